// Package tasks runs studio jobs against the backend with real-time progress reporting.
//
// # Core Operations
//
// [Studio] wraps a [session.ProjectSession] and a [services.StudioAPI]:
//
//  1. [Studio.GenerateMelody] : lyrics to melody, MIDI and lyric timing
//  2. [Studio.GenerateInstrumental] : tracks to instrumental and stems
//  3. [Studio.Mix] : stems to a mastered mix
//  4. [Studio.GenerateVideo] : master to video and thumbnails
//  5. [Studio.GenerateFull] : the whole pipeline in one backend job
//  6. [Studio.Export] : downloads results and writes project files
//
// Every generation operation ensures the project exists, submits a job and
// follows it with a [Poller] until it is "done" or "error".
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select
// with default so a slow reader never stalls a job.
//
// # Result Ordering
//
// Each operation takes a sequence number from the session before it submits.
// Results are merged with that number, so a slow job that finishes after a
// newer one never overwrites the newer one's URLs.
package tasks
