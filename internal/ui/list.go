package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/songsmith/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = resultItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	var flags []string
	if i.track.Muted {
		flags = append(flags, "M")
	}
	if i.track.Solo {
		flags = append(flags, "S")
	}
	if len(flags) == 0 {
		return i.track.Name
	}
	return fmt.Sprintf("%s [%s]", i.track.Name, strings.Join(flags, ""))
}
func (i trackItem) Description() string {
	c := i.track.Controls
	return fmt.Sprintf("vol %.2f • pan %+.2f • rev %.2f", c.Volume, c.Pan, c.Reverb)
}

// resultItem is one downloadable result URL.
type resultItem struct {
	name string
	url  string
}

func (i resultItem) FilterValue() string { return i.name }
func (i resultItem) Title() string       { return i.name }
func (i resultItem) Description() string { return i.url }

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func resultItems(s *models.Session) []list.Item {
	var items []list.Item
	for _, k := range s.Results.Keys() {
		items = append(items, resultItem{name: k, url: s.Results[k]})
	}
	for _, st := range s.Stems {
		items = append(items, resultItem{name: "stem: " + st.Name, url: st.URL})
	}
	for i, u := range s.Thumbnails {
		items = append(items, resultItem{name: fmt.Sprintf("thumbnail %d", i+1), url: u})
	}
	return items
}
