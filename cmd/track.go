package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// TrackAdd adds an instrument track. Catalog names match case-insensitively.
func (r *Runner) TrackAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: instrument name", shared.ErrMissingArgument)
	}

	studio, err := r.studio()
	if err != nil {
		return err
	}
	name, known := models.MatchCatalog(models.Instruments, name)
	if !known {
		r.logger.Debug("instrument not in catalog", "name", name)
	}

	track, err := studio.Session().AddTrack(name)
	if err != nil {
		return err
	}
	if err := r.save(); err != nil {
		return err
	}
	r.writePlain("✓ Added %s (%s)\n", track.Name, track.ID)
	return nil
}

// TrackRemove removes a track.
func (r *Runner) TrackRemove(ctx context.Context, cmd *cli.Command) error {
	return r.withTrack(cmd, func(t models.Track) error {
		if err := r.engine.Session().RemoveTrack(t.ID); err != nil {
			return err
		}
		r.writePlain("✓ Removed %s\n", t.Name)
		return nil
	})
}

// TrackMute toggles mute.
func (r *Runner) TrackMute(ctx context.Context, cmd *cli.Command) error {
	return r.withTrack(cmd, func(t models.Track) error {
		muted, err := r.engine.Session().ToggleMute(t.ID)
		if err != nil {
			return err
		}
		r.writePlain("%s muted: %t\n", t.Name, muted)
		return nil
	})
}

// TrackSolo toggles solo.
func (r *Runner) TrackSolo(ctx context.Context, cmd *cli.Command) error {
	return r.withTrack(cmd, func(t models.Track) error {
		solo, err := r.engine.Session().ToggleSolo(t.ID)
		if err != nil {
			return err
		}
		r.writePlain("%s solo: %t\n", t.Name, solo)
		return nil
	})
}

// TrackSet sets one control. Out-of-range values are clamped.
func (r *Runner) TrackSet(ctx context.Context, cmd *cli.Command) error {
	control, ok := models.ParseControlName(cmd.StringArg("control"))
	if !ok {
		return fmt.Errorf("%w: unknown control %q", shared.ErrInvalidArgument, cmd.StringArg("control"))
	}
	value, err := strconv.ParseFloat(cmd.StringArg("value"), 64)
	if err != nil {
		return fmt.Errorf("%w: value must be a number: %v", shared.ErrInvalidArgument, err)
	}

	return r.withTrack(cmd, func(t models.Track) error {
		stored, err := r.engine.Session().UpdateControl(t.ID, control, value)
		if err != nil {
			return err
		}
		r.writePlain("%s %s = %s\n", t.Name, control, strconv.FormatFloat(stored, 'f', -1, 64))
		return nil
	})
}

// TrackList prints the tracks.
func (r *Runner) TrackList(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	tracks := studio.Session().Tracks()
	if len(tracks) == 0 {
		r.writePlain("No tracks. Add one with `songsmith track add Piano`.\n")
		return nil
	}
	for i, t := range tracks {
		r.writePlain("%s\n", formatter.TrackLine(i, t))
	}
	return nil
}

// withTrack resolves the "track" argument, runs fn and saves.
func (r *Runner) withTrack(cmd *cli.Command, fn func(models.Track) error) error {
	ref := cmd.StringArg("track")
	if ref == "" {
		return fmt.Errorf("%w: track position, id or name", shared.ErrMissingArgument)
	}
	studio, err := r.studio()
	if err != nil {
		return err
	}
	track, err := studio.Session().ResolveTrack(ref)
	if err != nil {
		return err
	}
	if err := fn(track); err != nil {
		return err
	}
	return r.save()
}

// LyricsSet replaces the project lyrics from the argument or --file.
func (r *Runner) LyricsSet(ctx context.Context, cmd *cli.Command) error {
	lyrics, err := lyricsInput(cmd.StringArg("text"), cmd.String("file"))
	if err != nil {
		return err
	}
	if lyrics == "" {
		return fmt.Errorf("%w: lyrics text or --file", shared.ErrMissingArgument)
	}

	studio, err := r.studio()
	if err != nil {
		return err
	}
	studio.Session().SetLyrics(lyrics)
	if err := r.save(); err != nil {
		return err
	}
	r.writePlain("✓ Lyrics set (%d lines)\n", len(strings.Split(strings.TrimSpace(lyrics), "\n")))
	return nil
}

// LyricsShow prints the lyrics, with timing once a melody has been generated.
func (r *Runner) LyricsShow(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	sess := studio.Session()
	segs := sess.Segments()

	if cmd.Bool("lrc") {
		return r.writeBytes(formatter.LyricsToLRC(sess.Project().Name, segs))
	}
	if len(segs) == 0 {
		lyrics := sess.Project().Lyrics
		if lyrics == "" {
			r.writePlain("No lyrics yet.\n")
			return nil
		}
		r.writePlain("%s\n", lyrics)
		return nil
	}
	for _, seg := range segs {
		r.writePlain("[%s - %s] %s\n", formatter.FormatTimestamp(seg.Start), formatter.FormatTimestamp(seg.End), seg.Text)
	}
	return nil
}

// lyricsInput returns text, or the contents of file when given. Both at once is an error.
func lyricsInput(text, file string) (string, error) {
	if text != "" && file != "" {
		return "", fmt.Errorf("%w: give lyrics text or a file, not both", shared.ErrInvalidArgument)
	}
	if file == "" {
		return text, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics file: %w", err)
	}
	return string(data), nil
}
