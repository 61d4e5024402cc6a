// Package repositories implements SQLite persistence for studio sessions.
//
// A CLI invocation lives for one command, so everything a later command needs
// is stored here: the project fields and backend project id, tracks, lyric
// timing, the result bundle with per-key sequence numbers, stems, thumbnails
// and the last voice quality report.
//
// Key Implementations:
//   - [SessionRepository] : session CRUD with child tables written in one transaction
//   - [SessionRepository.SetCurrent] / [SessionRepository.Current] : the session commands operate on
//
// Child rows are replaced wholesale on every Update.
package repositories
