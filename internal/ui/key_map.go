package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up           key.Binding
	down         key.Binding
	enter        key.Binding
	back         key.Binding
	mute         key.Binding
	solo         key.Binding
	add          key.Binding
	remove       key.Binding
	nextControl  key.Binding
	prevControl  key.Binding
	decrease     key.Binding
	increase     key.Binding
	lyrics       key.Binding
	melody       key.Binding
	instrumental key.Binding
	mix          key.Binding
	video        key.Binding
	full         key.Binding
	export       key.Binding
	results      key.Binding
	cancel       key.Binding
	save         key.Binding
	quit         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		mute:         key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		solo:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "solo")),
		add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add track")),
		remove:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		nextControl:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
		prevControl:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev control")),
		decrease:     key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/h", "decrease")),
		increase:     key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("→/l", "increase")),
		lyrics:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lyrics")),
		melody:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "melody")),
		instrumental: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "instrumental")),
		mix:          key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "mix")),
		video:        key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "video")),
		full:         key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "full song")),
		export:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		results:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "results")),
		cancel:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel job")),
		save:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.mute, k.solo, k.add, k.lyrics, k.results, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.mute, k.solo, k.add, k.remove},
		{k.nextControl, k.prevControl, k.decrease, k.increase},
		{k.melody, k.instrumental, k.mix, k.video, k.full},
		{k.lyrics, k.export, k.results, k.cancel, k.quit},
	}
}
