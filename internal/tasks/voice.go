package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/voice"
)

// CreateProject makes sure the backend knows the project and returns its id.
func (s *Studio) CreateProject(ctx context.Context, progress chan<- ProgressUpdate) (string, error) {
	if id := s.session.ProjectID(); id != "" {
		return id, nil
	}

	s.sendProgress(progress, statusUpdate(CreateProject, "Creating project..."))
	id, err := s.session.EnsureProject(ctx)
	if err != nil {
		s.session.SetStatus(err.Error())
		s.sendProgress(progress, failedUpdate(CreateProject, err))
		return "", err
	}

	status := "Project created: " + id
	s.session.SetStatus(status)
	s.sendProgress(progress, doneUpdate(CreateProject, status, s.session.Results()))
	return id, nil
}

// UploadVoice validates and uploads clips through svc. Validation failures
// make no network call and leave the session untouched. The created profile
// becomes the session's voice.
func (s *Studio) UploadVoice(ctx context.Context, progress chan<- ProgressUpdate, svc *voice.Service, clips []voice.Clip, meta models.VoiceMetadata, consent bool) (*models.VoiceProfile, error) {
	s.sendProgress(progress, statusUpdate(UploadVoice, fmt.Sprintf("Uploading %d clip(s)...", len(clips))))

	profile, err := svc.Upload(ctx, clips, meta, consent)
	if err != nil {
		s.sendProgress(progress, failedUpdate(UploadVoice, err))
		return nil, err
	}

	s.session.SetQuality(profile)
	status := "Voice profile created: " + profile.ID
	s.session.SetStatus(status)
	s.sendProgress(progress, doneUpdate(UploadVoice, status, s.session.Results()))
	s.logger.Info("voice selected", "voice_profile_id", profile.ID)
	return profile, nil
}
