package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/services"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
)

// Settings are the generation parameters that do not live on the project.
type Settings struct {
	LengthSec        int
	MasterTargetLUFS float64
	AspectRatio      string
}

// SettingsFromConfig reads generation settings from cfg.
func SettingsFromConfig(cfg *shared.Config) Settings {
	return Settings{
		LengthSec:        cfg.Project.LengthSec,
		MasterTargetLUFS: cfg.Mix.MasterTargetLUFS,
		AspectRatio:      cfg.Video.AspectRatio,
	}
}

// Studio runs generation jobs against the backend and folds their results
// into a [session.ProjectSession].
type Studio struct {
	api      services.StudioAPI
	session  *session.ProjectSession
	poller   *Poller
	settings Settings
	logger   *log.Logger
}

// NewStudio creates a Studio. A nil poller polls api at the default interval.
func NewStudio(api services.StudioAPI, sess *session.ProjectSession, poller *Poller, settings Settings, logger *log.Logger) *Studio {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if poller == nil {
		poller = NewPoller(api, DefaultPollInterval, 0, logger)
	}
	return &Studio{api: api, session: sess, poller: poller, settings: settings, logger: logger}
}

// Session returns the session the studio writes to.
func (s *Studio) Session() *session.ProjectSession { return s.session }

// sendProgress sends a progress update through the channel without blocking.
func (s *Studio) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// operation describes one generation job.
type operation struct {
	phase   Phase
	pending string
	submit  func(ctx context.Context, projectID string) (string, error)
	// done merges the finished job and returns the new status line.
	done func(seq int64, res *models.JobResult) string
}

func (s *Studio) run(ctx context.Context, progress chan<- ProgressUpdate, op operation) (*models.Job, error) {
	seq := s.session.NextSeq()
	logger := shared.WithLogger(s.logger, "phase", op.phase, "seq", seq)

	fail := func(err error) (*models.Job, error) {
		s.session.SetStatus(err.Error())
		s.sendProgress(progress, failedUpdate(op.phase, err))
		logger.Error("generation failed", "error", err)
		return nil, err
	}

	s.session.SetStatus(op.pending)
	s.sendProgress(progress, statusUpdate(op.phase, op.pending))

	projectID, err := s.session.EnsureProject(ctx)
	if err != nil {
		return fail(err)
	}

	jobID, err := op.submit(ctx, projectID)
	if err != nil {
		return fail(err)
	}
	logger.Info("job submitted", "job", jobID, "project_id", projectID)

	job, err := s.poller.Poll(ctx, jobID, func(j *models.Job) {
		s.session.SetStatus(j.StatusLine())
		s.sendProgress(progress, jobUpdate(op.phase, j))
	})
	if err != nil {
		return fail(err)
	}

	if job.Status == models.JobError {
		s.session.SetStatus(job.Message)
		err := fmt.Errorf("%w: job %s: %s", shared.ErrJobFailed, jobID, job.Message)
		s.sendProgress(progress, failedUpdate(op.phase, err))
		logger.Warn("job failed", "job", jobID, "message", job.Message)
		return job, err
	}

	status := op.done(seq, job.Result)
	s.session.SetStatus(status)
	s.sendProgress(progress, doneUpdate(op.phase, status, s.session.Results()))
	logger.Info("job done", "job", jobID, "status", status)
	return job, nil
}

// GenerateMelody submits lyrics for melody generation. On success the lyric
// timing, MIDI and guide audio are recorded and lyrics is stored on the project.
func (s *Studio) GenerateMelody(ctx context.Context, progress chan<- ProgressUpdate, lyrics string) (*models.Job, error) {
	return s.run(ctx, progress, operation{
		phase:   Melody,
		pending: "Generating melody...",
		submit: func(ctx context.Context, projectID string) (string, error) {
			p := s.session.Project()
			return s.api.GenerateMelody(ctx, models.MelodyRequest{
				ProjectID: projectID,
				Lyrics:    lyrics,
				Style:     p.Style,
				Tempo:     p.Tempo,
				Key:       p.Key,
			})
		},
		done: func(seq int64, res *models.JobResult) string {
			s.session.SetSegments(seq, res.Segments())
			fields := map[string]string{}
			if res != nil {
				fields[models.ResultMidi] = res.MidiURL
				fields[models.ResultGuideAudio] = res.GuideAudioURL
			}
			s.session.MergeResults(seq, fields)
			s.session.SetLyrics(lyrics)
			return "Melody ready"
		},
	})
}

// GenerateInstrumental renders the current tracks. Every URL in the result
// is merged and any stems are recorded for the next mix.
func (s *Studio) GenerateInstrumental(ctx context.Context, progress chan<- ProgressUpdate) (*models.Job, error) {
	return s.run(ctx, progress, operation{
		phase:   Instrumental,
		pending: "Generating instrumental...",
		submit: func(ctx context.Context, projectID string) (string, error) {
			p := s.session.Project()
			return s.api.GenerateInstrumental(ctx, models.InstrumentalRequest{
				ProjectID:   projectID,
				Tempo:       p.Tempo,
				Key:         p.Key,
				Instruments: models.TrackNames(s.session.Tracks()),
				LengthSec:   s.settings.LengthSec,
				Style:       p.Style,
			})
		},
		done: func(seq int64, res *models.JobResult) string {
			s.session.MergeResults(seq, res.URLs())
			if res != nil && len(res.Stems) > 0 {
				s.session.SetStems(seq, res.Stems)
			}
			return "Instrumental ready"
		},
	})
}

// Mix masters the recorded stems.
func (s *Studio) Mix(ctx context.Context, progress chan<- ProgressUpdate) (*models.Job, error) {
	return s.run(ctx, progress, operation{
		phase:   MixMaster,
		pending: "Mixing...",
		submit: func(ctx context.Context, projectID string) (string, error) {
			return s.api.Mix(ctx, models.MixRequest{
				ProjectID:        projectID,
				Stems:            s.session.Stems().URLs(),
				MasterTargetLUFS: s.settings.MasterTargetLUFS,
			})
		},
		done: func(seq int64, res *models.JobResult) string {
			var master string
			if res != nil {
				master = res.MasterURL
			}
			s.session.MergeResults(seq, map[string]string{models.ResultMaster: master})
			return "Master ready: " + master
		},
	})
}

// GenerateVideo renders a video for the latest master, or with an empty
// audio URL when nothing has been mixed yet.
func (s *Studio) GenerateVideo(ctx context.Context, progress chan<- ProgressUpdate) (*models.Job, error) {
	return s.run(ctx, progress, operation{
		phase:   Video,
		pending: "Generating video...",
		submit: func(ctx context.Context, projectID string) (string, error) {
			return s.api.GenerateVideo(ctx, models.VideoRequest{
				ProjectID:   projectID,
				AudioURL:    s.session.LatestMaster(),
				Style:       s.session.Project().Style,
				AspectRatio: s.settings.AspectRatio,
			})
		},
		done: func(seq int64, res *models.JobResult) string {
			if res != nil {
				s.session.MergeResults(seq, map[string]string{models.ResultVideo: res.VideoURL})
				if len(res.Thumbnails) > 0 {
					s.session.SetThumbnails(seq, res.Thumbnails)
				}
			}
			return "Video ready"
		},
	})
}

// GenerateFull runs the whole pipeline on the backend. The result bundle is
// replaced by the pipeline's master, video, MIDI and vocal.
func (s *Studio) GenerateFull(ctx context.Context, progress chan<- ProgressUpdate) (*models.Job, error) {
	return s.run(ctx, progress, operation{
		phase:   FullSong,
		pending: "Generating song...",
		submit: func(ctx context.Context, projectID string) (string, error) {
			p := s.session.Project()
			return s.api.GenerateFull(ctx, models.FullRequest{
				ProjectID:   projectID,
				Tempo:       p.Tempo,
				Key:         p.Key,
				Style:       p.Style,
				Lyrics:      p.Lyrics,
				Instruments: models.TrackNames(s.session.Tracks()),
			})
		},
		done: func(seq int64, res *models.JobResult) string {
			if res == nil {
				res = &models.JobResult{}
			}
			s.session.ReplaceResults(seq, res.MasterURL, res.VideoURL, res.MidiURL, res.VocalURL)
			return "Song ready"
		},
	})
}
