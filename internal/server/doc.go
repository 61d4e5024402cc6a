// Package server provides HTTP routing, middleware and the in-memory mock studio backend.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. A path may be
// registered for several methods; other methods get 405 with an Allow header.
//
// # Mock Backend
//
// [MockBackend] serves the studio API (project creation, the five generation
// endpoints, job status and voice upload) from memory. Every status poll
// advances a job by [MockOptions.Step] percent: the first poll is "pending",
// later ones "running", and the job finishes "done" (or "error" for kinds
// listed in [MockOptions.Fail]). Result URLs are relative /media paths that
// the backend also serves as placeholder files, so exports work end to end.
//
// [Serve] runs any handler until its context is cancelled.
package server
