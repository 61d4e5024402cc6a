package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
)

// ProjectNew starts a new session and applies any field flags.
func (r *Runner) ProjectNew(ctx context.Context, cmd *cli.Command) error {
	rec, err := r.newSession(cmd.StringArg("name"))
	if err != nil {
		return err
	}
	studio, err := r.studio()
	if err != nil {
		return err
	}
	if err := r.applyProjectFlags(cmd, studio.Session()); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		return err
	}

	r.logger.Info("session started", "session", rec.ID())
	r.writePlain("✓ New session %s\n\n", rec.ID())
	return r.writeBytes(formatter.SessionToText(studio.Session().Snapshot()))
}

// ProjectShow prints the current session.
func (r *Runner) ProjectShow(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	return r.writeBytes(formatter.SessionToText(studio.Session().Snapshot()))
}

// ProjectSet changes project fields on the current session.
func (r *Runner) ProjectSet(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	sess := studio.Session()

	if cmd.IsSet("name") {
		if err := sess.SetName(cmd.String("name")); err != nil {
			return err
		}
	}
	if err := r.applyProjectFlags(cmd, sess); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		return err
	}
	return r.writeBytes(formatter.SessionToText(sess.Snapshot()))
}

func (r *Runner) applyProjectFlags(cmd *cli.Command, sess *session.ProjectSession) error {
	if cmd.IsSet("tempo") {
		want := cmd.Int("tempo")
		got, err := sess.SetTempo(want)
		if err != nil {
			return err
		}
		if got != want {
			r.writePlain("Tempo %d is out of range, using %d\n", want, got)
		}
	}
	if cmd.IsSet("key") {
		sess.SetKey(cmd.String("key"))
	}
	if cmd.IsSet("style") {
		sess.SetStyle(cmd.String("style"))
	}
	if cmd.IsSet("duration") {
		if err := sess.SetDuration(cmd.Int("duration")); err != nil {
			return err
		}
	}
	return nil
}

// ProjectCreate makes sure the backend knows the project and prints its id.
func (r *Runner) ProjectCreate(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	id, err := studio.CreateProject(ctx, nil)
	if serr := r.save(); serr != nil {
		r.logger.Warn("failed to save session", "error", serr)
	}
	if err != nil {
		return err
	}
	r.writePlain("Project ID: %s\n", id)
	return nil
}

// ProjectList prints saved sessions, marking the current one.
func (r *Runner) ProjectList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.store()
	if err != nil {
		return err
	}

	current := ""
	if cur, err := repo.Current(); err == nil {
		current = cur.ID()
	} else if !errors.Is(err, shared.ErrNoSession) {
		return err
	}

	sessions, err := repo.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		r.writePlain("No sessions yet. Run `songsmith project new`.\n")
		return nil
	}

	for _, s := range sessions {
		mark := " "
		if s.ID() == current {
			mark = "*"
		}
		projectID := s.Project.ID
		if projectID == "" {
			projectID = "-"
		}
		r.writePlain("%s %s  %-24s  %3d BPM  %d tracks  project=%s  updated %s\n",
			mark, s.ID(), s.Project.Name, s.Project.Tempo, len(s.Tracks), projectID,
			s.UpdatedAt().Format("2006-01-02 15:04"))
	}
	return nil
}

// ProjectUse switches the current session. The argument may be a session id or a backend project id.
func (r *Runner) ProjectUse(ctx context.Context, cmd *cli.Command) error {
	rec, err := r.findSession(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.sessions.SetCurrent(rec.ID()); err != nil {
		return err
	}
	r.engine = nil
	r.writePlain("✓ Now using %s (%s)\n", rec.Project.Name, rec.ID())
	return nil
}

// ProjectDelete removes a saved session.
func (r *Runner) ProjectDelete(ctx context.Context, cmd *cli.Command) error {
	rec, err := r.findSession(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.sessions.Delete(rec.ID()); err != nil {
		return err
	}
	r.engine = nil
	r.writePlain("✓ Deleted %s (%s)\n", rec.Project.Name, rec.ID())
	return nil
}

func (r *Runner) findSession(id string) (*models.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: session or project id", shared.ErrMissingArgument)
	}
	repo, err := r.store()
	if err != nil {
		return nil, err
	}
	rec, err := repo.Get(id)
	if errors.Is(err, shared.ErrNoSession) {
		rec, err = repo.GetByProjectID(id)
	}
	return rec, err
}
