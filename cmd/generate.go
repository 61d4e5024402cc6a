package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/tasks"
)

type studioOp func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error)

// GenerateMelody generates a melody for --lyrics, --lyrics-file or the project lyrics.
func (r *Runner) GenerateMelody(ctx context.Context, cmd *cli.Command) error {
	lyrics, err := lyricsInput(cmd.String("lyrics"), cmd.String("lyrics-file"))
	if err != nil {
		return err
	}
	return r.runOperation(ctx, "Melody", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		if strings.TrimSpace(lyrics) == "" {
			lyrics = r.engine.Session().Project().Lyrics
		}
		return r.engine.GenerateMelody(ctx, progress, lyrics)
	})
}

// GenerateInstrumental renders the instrument tracks.
func (r *Runner) GenerateInstrumental(ctx context.Context, cmd *cli.Command) error {
	return r.runOperation(ctx, "Instrumental", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		return r.engine.GenerateInstrumental(ctx, progress)
	})
}

// GenerateMix mixes and masters the recorded stems.
func (r *Runner) GenerateMix(ctx context.Context, cmd *cli.Command) error {
	return r.runOperation(ctx, "Mix & Master", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		return r.engine.Mix(ctx, progress)
	})
}

// GenerateVideo renders a video for the latest master.
func (r *Runner) GenerateVideo(ctx context.Context, cmd *cli.Command) error {
	return r.runOperation(ctx, "Video", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		return r.engine.GenerateVideo(ctx, progress)
	})
}

// GenerateFull runs the whole pipeline as one job.
func (r *Runner) GenerateFull(ctx context.Context, cmd *cli.Command) error {
	return r.runOperation(ctx, "Full Song", func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
		return r.engine.GenerateFull(ctx, progress)
	})
}

// runOperation prints progress while op runs and saves the session afterwards,
// whether or not op succeeded, so the status line and project id persist.
func (r *Runner) runOperation(ctx context.Context, title string, op studioOp) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}

	r.writePlainHeader(title)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		last := ""
		for update := range progressCh {
			if update.Message == last {
				continue
			}
			last = update.Message
			if update.Total > 0 {
				r.writePlain("  %3.0f%%  %s\n", update.Percent()*100, update.Message)
			} else {
				r.writePlain("  ...   %s\n", update.Message)
			}
		}
	}()

	job, opErr := op(ctx, progressCh)
	close(progressCh)
	<-printed

	if err := r.save(); err != nil {
		r.logger.Warn("failed to save session", "error", err)
	}
	if opErr != nil {
		return opErr
	}

	r.logger.Debug("operation finished", "job", job.ID, "status", job.Status)
	r.writePlain("\n✓ %s\n", studio.Session().Status())
	return nil
}
