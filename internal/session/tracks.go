package session

import (
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// AddTrack appends a track with default controls and a fresh identifier.
func (s *ProjectSession) AddTrack(name string) (models.Track, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Track{}, fmt.Errorf("%w: track name cannot be empty", shared.ErrInvalidArgument)
	}
	name, _ = models.MatchCatalog(models.Instruments, name)

	t := models.Track{
		ID:       shared.GenerateID(),
		Name:     name,
		Controls: models.DefaultControls(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tracks = append(s.state.Tracks, t)
	return t, nil
}

// RemoveTrack deletes the track with id.
func (s *ProjectSession) RemoveTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	s.state.Tracks = append(s.state.Tracks[:i], s.state.Tracks[i+1:]...)
	return nil
}

// ToggleMute flips the muted flag and returns the new value.
func (s *ProjectSession) ToggleMute(id string) (bool, error) {
	return s.toggle(id, func(t *models.Track) *bool { return &t.Muted })
}

// ToggleSolo flips the solo flag and returns the new value. Solo does not
// affect other tracks.
func (s *ProjectSession) ToggleSolo(id string) (bool, error) {
	return s.toggle(id, func(t *models.Track) *bool { return &t.Solo })
}

func (s *ProjectSession) toggle(id string, flag func(*models.Track) *bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	f := flag(&s.state.Tracks[i])
	*f = !*f
	return *f, nil
}

// UpdateControl sets one control on a track, clamped to the control's
// range, and returns the stored value.
func (s *ProjectSession) UpdateControl(id string, control models.ControlName, value float64) (float64, error) {
	if _, ok := models.ParseControlName(string(control)); !ok {
		return 0, fmt.Errorf("%w: unknown control %q", shared.ErrInvalidArgument, control)
	}
	if math.IsNaN(value) {
		return 0, fmt.Errorf("%w: %s must be a number", shared.ErrInvalidArgument, control)
	}
	lo, hi := control.Range()
	value = shared.Clamp(value, lo, hi)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err := s.state.Tracks[i].Controls.Set(control, value); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return value, nil
}

// Tracks returns a copy of the track list.
func (s *ProjectSession) Tracks() []models.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Track{}, s.state.Tracks...)
}

// ResolveTrack finds a track by exact id, unique id prefix, 1-based
// position, or unique name (case-insensitive).
func (s *ProjectSession) ResolveTrack(ref string) (models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref = strings.TrimSpace(ref)
	if i := s.indexOf(ref); i >= 0 {
		return s.state.Tracks[i], nil
	}

	var pos int
	if _, err := fmt.Sscanf(ref, "%d", &pos); err == nil && fmt.Sprint(pos) == ref {
		if pos >= 1 && pos <= len(s.state.Tracks) {
			return s.state.Tracks[pos-1], nil
		}
	}

	var matches []models.Track
	for _, t := range s.state.Tracks {
		if (len(ref) >= 4 && strings.HasPrefix(t.ID, ref)) || strings.EqualFold(t.Name, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, ref)
	default:
		return models.Track{}, fmt.Errorf("%w: %q matches %d tracks", shared.ErrInvalidArgument, ref, len(matches))
	}
}

func (s *ProjectSession) indexOf(id string) int {
	for i, t := range s.state.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
