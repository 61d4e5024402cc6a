package models

import (
	"fmt"
	"time"
)

// Session is a saved studio session: project, tracks, lyrics, results and status.
type Session struct {
	id        string
	createdAt time.Time
	updatedAt time.Time

	Project    Project
	Tracks     []Track
	Segments   []LyricSegment
	Results    ResultBundle
	ResultSeqs map[string]int64
	Stems      Stems
	Thumbnails []string
	VoiceID    string
	Status     string
	NextSeq    int64
	Quality    *QualityReport
}

// NewSession creates a session for project with empty state.
func NewSession(project Project) *Session {
	now := time.Now()
	return &Session{
		createdAt:  now,
		updatedAt:  now,
		Project:    project,
		Tracks:     []Track{},
		Segments:   []LyricSegment{},
		Results:    ResultBundle{},
		ResultSeqs: map[string]int64{},
		Status:     "Ready",
	}
}

// RestoreSession rebuilds a session loaded from storage.
func RestoreSession(id string, createdAt, updatedAt time.Time) *Session {
	s := NewSession(Project{})
	s.id, s.createdAt, s.updatedAt = id, createdAt, updatedAt
	return s
}

func (s *Session) ID() string               { return s.id }
func (s *Session) SetID(id string)          { s.id = id }
func (s *Session) CreatedAt() time.Time     { return s.createdAt }
func (s *Session) UpdatedAt() time.Time     { return s.updatedAt }
func (s *Session) SetUpdatedAt(t time.Time) { s.updatedAt = t }

// Validate checks the fields required for storage.
func (s *Session) Validate() error {
	if s.Project.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if s.Project.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %d", s.Project.Tempo)
	}
	seen := make(map[string]bool, len(s.Tracks))
	for _, t := range s.Tracks {
		if t.ID == "" {
			return fmt.Errorf("track %q has no id", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate track id %s", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
