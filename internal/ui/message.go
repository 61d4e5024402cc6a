package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songsmith/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgOperationComplete
	MsgSaved
)

// opResult is the outcome of a background operation.
type opResult struct {
	name   string
	notice string
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// operationCompleteMsg is the constructor for [MsgOperationComplete]
func operationCompleteMsg(res opResult) Msg {
	return Msg{kind: MsgOperationComplete, data: res}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(err error) Msg {
	return Msg{kind: MsgSaved, data: err}
}
