// package services defines the [StudioAPI] interface for the music studio backend
package services

import (
	"context"

	"github.com/desertthunder/songsmith/internal/models"
)

// StudioAPI covers the backend's project, generation, job status and voice upload endpoints.
type StudioAPI interface {
	// CreateProject persists a project and returns the backend-assigned id.
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (string, error)

	GenerateMelody(ctx context.Context, req models.MelodyRequest) (string, error)
	GenerateInstrumental(ctx context.Context, req models.InstrumentalRequest) (string, error)
	Mix(ctx context.Context, req models.MixRequest) (string, error)
	GenerateVideo(ctx context.Context, req models.VideoRequest) (string, error)
	GenerateFull(ctx context.Context, req models.FullRequest) (string, error)

	// JobStatus fetches one snapshot of a job.
	JobStatus(ctx context.Context, jobID string) (*models.Job, error)

	// UploadVoice sends validated clips and metadata as multipart/form-data.
	UploadVoice(ctx context.Context, files []models.VoiceFile, meta models.VoiceMetadata) (*models.VoiceProfile, error)
}
