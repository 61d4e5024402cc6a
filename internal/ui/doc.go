// Package ui implements the interactive studio using bubbletea's Elm architecture.
//
// The TUI has four views:
//  1. [StudioView] : track list, control panel for the selected track, status line and progress bar
//  2. [AddTrackView] : instrument name input with catalog suggestions
//  3. [LyricsView] : multi-line lyrics editor
//  4. [ResultsView] : result URLs, stems and thumbnails; enter opens one in the browser
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Generation jobs run in the background through [tasks.Studio]. Their progress updates flow through a channel and
// drive the status line and progress bar. One operation runs at a time and c cancels it.
//
// Every change is handed to [Options.Save] so the session survives the process.
package ui
