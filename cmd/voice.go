package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/voice"
)

// VoicePresets lists the stock voices, marking the selected one.
func (r *Runner) VoicePresets(ctx context.Context, cmd *cli.Command) error {
	selected := ""
	if studio, err := r.studio(); err == nil {
		selected = studio.Session().Voice()
	} else {
		r.logger.Debug("no session for voice selection", "error", err)
	}

	for _, p := range models.VoicePresets {
		mark := " "
		if p.ID == selected {
			mark = "*"
		}
		r.writePlain("%s %-12s %-26s %s/%s  demo: %s\n", mark, p.ID, p.Label, p.Locale, p.Gender, p.Demo)
	}
	return nil
}

// VoiceSelect stores a preset id or a custom voice profile id on the session.
func (r *Runner) VoiceSelect(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: preset or voice profile id", shared.ErrMissingArgument)
	}

	studio, err := r.studio()
	if err != nil {
		return err
	}
	studio.Session().SetVoice(id)
	if err := r.save(); err != nil {
		return err
	}

	if p, ok := models.FindVoicePreset(id); ok {
		r.writePlain("✓ Voice: %s (%s)\n", p.Label, p.ID)
	} else {
		r.writePlain("✓ Voice: custom profile %s\n", id)
	}
	return nil
}

// VoiceCheck inspects and validates clips without uploading them.
func (r *Runner) VoiceCheck(ctx context.Context, cmd *cli.Command) error {
	clips, err := voice.InspectAll(cmd.Args().Slice())
	if err != nil {
		return err
	}
	for _, c := range clips {
		r.writePlain("  %-32s %-8s %-14s %d bytes\n", c.Name, c.Ext, c.MIME, c.Size)
	}

	v := voice.NewValidator(voice.LimitsFromConfig(r.config.Upload))
	if err := v.Validate(clips, voiceMetadata(cmd), cmd.Bool("consent")); err != nil {
		return err
	}
	r.writePlain("✓ %d clip(s) ready to upload\n", len(clips))
	return nil
}

// VoiceUpload validates clips and, only if they pass, uploads them. The new
// profile becomes the session's voice.
func (r *Runner) VoiceUpload(ctx context.Context, cmd *cli.Command) error {
	clips, err := voice.InspectAll(cmd.Args().Slice())
	if err != nil {
		return err
	}

	v := voice.NewValidator(voice.LimitsFromConfig(r.config.Upload))
	meta := voiceMetadata(cmd)
	consent := cmd.Bool("consent")
	if err := v.Validate(clips, meta, consent); err != nil {
		return err
	}

	studio, err := r.studio()
	if err != nil {
		return err
	}

	svc := voice.NewService(v, r.client, shared.WithLogger(r.logger, "component", "voice"))
	r.writePlain("Uploading %d clip(s)...\n", len(clips))
	profile, err := studio.UploadVoice(ctx, nil, svc, clips, meta, consent)
	if err != nil {
		return err
	}
	if err := r.save(); err != nil {
		return err
	}
	return r.writeBytes(formatter.QualityReportToText(profile.ID, profile.Quality))
}

func voiceMetadata(cmd *cli.Command) models.VoiceMetadata {
	return models.VoiceMetadata{
		Name:   strings.TrimSpace(cmd.String("name")),
		Locale: models.Locale(strings.ToLower(cmd.String("locale"))),
		Gender: models.Gender(strings.ToLower(cmd.String("gender"))),
	}
}
