package models

import (
	"fmt"
	"strings"
)

// Project is the song being edited. ID stays empty until the backend assigns one.
type Project struct {
	ID          string `json:"projectId,omitempty"`
	Name        string `json:"name"`
	Tempo       int    `json:"tempo"`
	Key         string `json:"key"`
	Style       string `json:"style"`
	DurationSec int    `json:"duration_sec"`
	Lyrics      string `json:"lyrics"`
}

// Persisted reports whether the backend has assigned an identifier.
func (p Project) Persisted() bool {
	return p.ID != ""
}

// ControlName identifies one of a track's continuous controls.
type ControlName string

const (
	ControlVolume   ControlName = "volume"
	ControlPan      ControlName = "pan"
	ControlReverb   ControlName = "reverb"
	ControlAttack   ControlName = "attack"
	ControlRelease  ControlName = "release"
	ControlHumanize ControlName = "humanize"
)

// ControlNames lists the controls in display order.
var ControlNames = []ControlName{
	ControlVolume, ControlPan, ControlReverb, ControlAttack, ControlRelease, ControlHumanize,
}

// ParseControlName maps user input to a ControlName.
func ParseControlName(s string) (ControlName, bool) {
	name := ControlName(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range ControlNames {
		if c == name {
			return c, true
		}
	}
	return "", false
}

// Range returns the inclusive bounds for the control.
func (c ControlName) Range() (lo, hi float64) {
	if c == ControlPan {
		return -1, 1
	}
	return 0, 1
}

// Controls is a track's control set.
type Controls struct {
	Volume   float64 `json:"volume"`
	Pan      float64 `json:"pan"`
	Reverb   float64 `json:"reverb"`
	Attack   float64 `json:"attack"`
	Release  float64 `json:"release"`
	Humanize float64 `json:"humanize"`
}

// DefaultControls returns the control values a new track starts with.
func DefaultControls() Controls {
	return Controls{Volume: 0.8, Pan: 0, Reverb: 0.2, Attack: 0.01, Release: 0.2, Humanize: 0.3}
}

// Get returns the value of the named control.
func (c Controls) Get(name ControlName) float64 {
	switch name {
	case ControlVolume:
		return c.Volume
	case ControlPan:
		return c.Pan
	case ControlReverb:
		return c.Reverb
	case ControlAttack:
		return c.Attack
	case ControlRelease:
		return c.Release
	case ControlHumanize:
		return c.Humanize
	}
	return 0
}

// Set replaces the value of the named control. It does not clamp.
func (c *Controls) Set(name ControlName, v float64) error {
	switch name {
	case ControlVolume:
		c.Volume = v
	case ControlPan:
		c.Pan = v
	case ControlReverb:
		c.Reverb = v
	case ControlAttack:
		c.Attack = v
	case ControlRelease:
		c.Release = v
	case ControlHumanize:
		c.Humanize = v
	default:
		return fmt.Errorf("unknown control %q", name)
	}
	return nil
}

// Track is an instrument lane. Only its name reaches the backend.
type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Controls Controls `json:"controls"`
	Muted    bool     `json:"muted"`
	Solo     bool     `json:"solo"`
}

// TrackNames returns the instrument list sent to the backend.
func TrackNames(tracks []Track) []string {
	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = t.Name
	}
	return names
}

// LyricSegment is one timed lyric line.
type LyricSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
