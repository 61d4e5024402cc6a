package models

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required"`
	Tempo       int      `json:"tempo" validate:"gt=0"`
	Key         string   `json:"key"`
	Style       string   `json:"style"`
	DurationSec int      `json:"duration_sec" validate:"gt=0"`
	Instruments []string `json:"instruments"`
	Lyrics      string   `json:"lyrics"`
}

// CreateProjectResponse carries the backend-assigned identifier.
type CreateProjectResponse struct {
	ProjectID string `json:"projectId"`
}

// MelodyRequest is the body of POST /api/generate/melody.
type MelodyRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	Lyrics    string `json:"lyrics"`
	Style     string `json:"style"`
	Tempo     int    `json:"tempo" validate:"gt=0"`
	Key       string `json:"key"`
}

// InstrumentalRequest is the body of POST /api/generate/instrumental.
type InstrumentalRequest struct {
	ProjectID   string   `json:"projectId" validate:"required"`
	Tempo       int      `json:"tempo" validate:"gt=0"`
	Key         string   `json:"key"`
	Instruments []string `json:"instruments"`
	LengthSec   int      `json:"length_sec" validate:"gt=0"`
	Style       string   `json:"style"`
}

// MixRequest is the body of POST /api/mix.
type MixRequest struct {
	ProjectID        string   `json:"projectId" validate:"required"`
	Stems            []string `json:"stems"`
	MasterTargetLUFS float64  `json:"masterTargetLUFS"`
}

// VideoRequest is the body of POST /api/generate/video. AudioURL may be empty.
type VideoRequest struct {
	ProjectID   string `json:"projectId" validate:"required"`
	AudioURL    string `json:"audioUrl"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio" validate:"required"`
}

// FullRequest is the body of POST /api/generate/create.
type FullRequest struct {
	ProjectID   string   `json:"projectId" validate:"required"`
	Tempo       int      `json:"tempo" validate:"gt=0"`
	Key         string   `json:"key"`
	Style       string   `json:"style"`
	Lyrics      string   `json:"lyrics"`
	Instruments []string `json:"instruments"`
}

// JobAccepted is returned by every generation endpoint.
type JobAccepted struct {
	JobID string `json:"jobId"`
}
