// Package services implements the HTTP client for the music studio backend.
//
// # Raw access
//
// [APIService] sends requests relative to an explicit base URL, adds any
// configured headers (see `songsmith setup headers`) and paces requests
// with a [rate.Limiter]. It returns non-2xx responses as data so the
// `songsmith api` command can print them.
//
// # Studio API
//
// [StudioClient] implements [StudioAPI] on top of [APIService]:
//   - POST /api/projects returns a projectId
//   - POST /api/generate/{melody,instrumental,video,create} and POST /api/mix return a jobId
//   - GET /api/job/{jobId}/status returns a [models.Job] snapshot
//   - POST /api/upload/voice sends multipart/form-data and returns a [models.VoiceProfile]
//
// Request payloads are checked with validator struct tags before anything is sent.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure, non-2xx status or undecodable body
//   - [shared.ErrValidation] : a payload failed its struct tags
package services
