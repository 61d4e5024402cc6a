// Package models defines the domain entities and wire payloads for the songsmith studio client.
//
// The package contains three categories of types:
//
// 1. Studio state: what one editing session holds
//   - [Project] : Song metadata sent when the project is created
//   - [Track] : An instrument lane with its [Controls], mute and solo flags
//   - [LyricSegment] : A timed lyric line produced by melody generation
//   - [ResultBundle] : Named result URLs accumulated across jobs
//
// 2. Backend payloads: request and response bodies for the studio API
//   - [Job] : A polled job snapshot with its [JobResult]
//   - [QualityReport] : Per-clip analysis returned by voice upload
//   - Request structs such as [MelodyRequest] and [MixRequest]
//
// 3. Persistent entities: database-backed models with full lifecycle management
//   - [Session] : A saved studio session keyed by a local identifier
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
