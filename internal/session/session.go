// package session holds the mutable state of one studio editing session
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// ProjectCreator persists a project on the backend.
type ProjectCreator interface {
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (string, error)
}

// Options controls how project fields are normalized.
type Options struct {
	TempoMin   int
	TempoMax   int
	ClampTempo bool
}

// OptionsFromConfig reads tempo bounds from the [project] config section.
func OptionsFromConfig(cfg shared.ProjectConfig) Options {
	return Options{TempoMin: cfg.TempoMin, TempoMax: cfg.TempoMax, ClampTempo: cfg.ClampTempo}
}

// NewProject returns a project populated with configured defaults.
func NewProject(cfg shared.ProjectConfig) models.Project {
	return models.Project{
		Name:        cfg.Name,
		Tempo:       cfg.Tempo,
		Key:         cfg.Key,
		Style:       cfg.Style,
		DurationSec: cfg.DurationSec,
	}
}

// ProjectSession is the authoritative state of one editing session. It is
// safe for concurrent use.
type ProjectSession struct {
	mu     sync.RWMutex
	state  *models.Session
	opts   Options
	api    ProjectCreator
	create singleflight.Group
	logger *log.Logger

	// Sequence numbers of the operations that last wrote non-URL results.
	segmentsSeq, stemsSeq, thumbsSeq int64
}

// New wraps state. A nil state starts an empty session with a zero project.
func New(state *models.Session, api ProjectCreator, opts Options, logger *log.Logger) *ProjectSession {
	if state == nil {
		state = models.NewSession(models.Project{})
	}
	if state.Results == nil {
		state.Results = models.ResultBundle{}
	}
	if state.ResultSeqs == nil {
		state.ResultSeqs = map[string]int64{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ProjectSession{state: state, opts: opts, api: api, logger: logger}
}

// EnsureProject returns the project's backend identifier, creating the
// project on first use. Concurrent callers share one creation request.
func (s *ProjectSession) EnsureProject(ctx context.Context) (string, error) {
	if id := s.ProjectID(); id != "" {
		return id, nil
	}

	// The request outlives any single caller; each caller stops waiting when
	// its own ctx is done.
	ch := s.create.DoChan("create", func() (any, error) {
		s.mu.RLock()
		if id := s.state.Project.ID; id != "" {
			s.mu.RUnlock()
			return id, nil
		}
		p := s.state.Project
		req := models.CreateProjectRequest{
			Name:        p.Name,
			Tempo:       p.Tempo,
			Key:         p.Key,
			Style:       p.Style,
			DurationSec: p.DurationSec,
			Instruments: models.TrackNames(s.state.Tracks),
			Lyrics:      p.Lyrics,
		}
		s.mu.RUnlock()

		id, err := s.api.CreateProject(context.WithoutCancel(ctx), req)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state.Project.ID == "" {
			s.state.Project.ID = id
			s.logger.Info("project created", "project_id", id, "name", p.Name)
		}
		return s.state.Project.ID, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: waiting for project creation: %w", shared.ErrCancelled, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ProjectID returns the backend identifier or "".
func (s *ProjectSession) ProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Project.ID
}

// Project returns a copy of the project fields.
func (s *ProjectSession) Project() models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Project
}

// SetName renames the project.
func (s *ProjectSession) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name cannot be empty", shared.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.Name = name
	return nil
}

// SetTempo stores bpm, clamped to the configured range when clamping is on.
// It returns the stored value.
func (s *ProjectSession) SetTempo(bpm int) (int, error) {
	if s.opts.ClampTempo {
		if bpm < s.opts.TempoMin {
			bpm = s.opts.TempoMin
		}
		if bpm > s.opts.TempoMax {
			bpm = s.opts.TempoMax
		}
	}
	if bpm <= 0 {
		return 0, fmt.Errorf("%w: tempo must be positive, got %d", shared.ErrInvalidArgument, bpm)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.Tempo = bpm
	return bpm, nil
}

// SetKey sets the musical key, trimmed.
func (s *ProjectSession) SetKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.Key = strings.TrimSpace(key)
}

// SetStyle sets the mood. Catalog entries are matched case-insensitively;
// other values are stored as given.
func (s *ProjectSession) SetStyle(style string) {
	style, _ = models.MatchCatalog(models.Styles, style)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.Style = style
}

// SetLyrics replaces the untimed lyrics.
func (s *ProjectSession) SetLyrics(lyrics string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.Lyrics = lyrics
}

// SetDuration sets the song length in seconds. It must be positive.
func (s *ProjectSession) SetDuration(sec int) error {
	if sec <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", shared.ErrInvalidArgument, sec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project.DurationSec = sec
	return nil
}

// SetVoice records the selected voice preset or custom voice profile id.
func (s *ProjectSession) SetVoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.VoiceID = id
}

// Voice returns the selected voice preset or profile id.
func (s *ProjectSession) Voice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.VoiceID
}

// SetQuality records the last upload's quality report.
func (s *ProjectSession) SetQuality(profile *models.VoiceProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.VoiceID = profile.ID
	s.state.Quality = profile.Quality
}

// SetStatus replaces the status line.
func (s *ProjectSession) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Status = status
}

// Status returns the status line.
func (s *ProjectSession) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status
}

// NextSeq reserves the sequence number for a new generation operation.
func (s *ProjectSession) NextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.NextSeq++
	return s.state.NextSeq
}

// Snapshot returns a deep copy of the session state.
func (s *ProjectSession) Snapshot() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := *s.state
	cp.Tracks = append([]models.Track{}, s.state.Tracks...)
	cp.Segments = append([]models.LyricSegment{}, s.state.Segments...)
	cp.Results = s.state.Results.Clone()
	cp.ResultSeqs = make(map[string]int64, len(s.state.ResultSeqs))
	for k, v := range s.state.ResultSeqs {
		cp.ResultSeqs[k] = v
	}
	cp.Stems = append(models.Stems{}, s.state.Stems...)
	cp.Thumbnails = append([]string{}, s.state.Thumbnails...)
	if s.state.Quality != nil {
		q := *s.state.Quality
		q.Clips = append([]models.ClipReport{}, q.Clips...)
		cp.Quality = &q
	}
	return &cp
}
