package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/ui"
)

// TUI launches the interactive studio for the current session.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	studio, err := r.studio()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, studio, ui.Options{
		Save:    r.saveSession,
		Export:  r.exportOpts(""),
		BaseURL: r.config.Backend.BaseURL,
		Logger:  fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := p.Run()
	if err := r.save(); err != nil {
		fileLogger.Error("failed to save session", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}

	return nil
}
