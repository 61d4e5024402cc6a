package models

import "strings"

// Instruments is the stock instrument catalog offered when adding tracks.
var Instruments = []string{
	"Piano", "Acoustic Guitar", "Violin", "Cello", "Soft Pad",
	"Kick", "Snare", "Shaker", "Santoor", "Flute",
}

// Styles is the mood catalog for projects.
var Styles = []string{"Romantic", "Sad", "One-sided"}

// MatchCatalog returns the catalog entry equal to s ignoring case, or s unchanged.
func MatchCatalog(catalog []string, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range catalog {
		if strings.EqualFold(c, s) {
			return c, true
		}
	}
	return s, false
}
