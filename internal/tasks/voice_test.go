package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
	tu "github.com/desertthunder/songsmith/internal/testing"
	"github.com/desertthunder/songsmith/internal/voice"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("creates once and reports status", func(t *testing.T) {
		api := tu.NewMockStudio()
		st := newTestStudio(t, api)
		progress := make(chan ProgressUpdate, 8)

		id, err := st.CreateProject(ctx, progress)
		if err != nil {
			t.Fatalf("CreateProject: %v", err)
		}
		if id != "proj-1" {
			t.Errorf("expected proj-1, got %q", id)
		}
		if st.Session().Status() != "Project created: proj-1" {
			t.Errorf("unexpected status %q", st.Session().Status())
		}
		if msgs := drain(progress); len(msgs) != 2 {
			t.Errorf("expected 2 updates, got %v", msgs)
		}

		if _, err := st.CreateProject(ctx, progress); err != nil {
			t.Fatalf("second CreateProject: %v", err)
		}
		if api.Count("CreateProject") != 1 {
			t.Errorf("expected one creation request, got %d", api.Count("CreateProject"))
		}
	})

	t.Run("failure sets status", func(t *testing.T) {
		api := tu.NewMockStudio()
		api.Errors["CreateProject"] = shared.ErrAPIRequest
		st := newTestStudio(t, api)

		if _, err := st.CreateProject(ctx, nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if st.Session().Status() != shared.ErrAPIRequest.Error() {
			t.Errorf("unexpected status %q", st.Session().Status())
		}
	})
}

func TestStudioUploadVoice(t *testing.T) {
	ctx := context.Background()
	meta := models.VoiceMetadata{Name: "Mira", Locale: models.LocaleEnglish, Gender: models.GenderFemale}

	clips := func(t *testing.T) []voice.Clip {
		t.Helper()
		path := tu.WriteSizedFile(t, t.TempDir(), "take.wav", 1024)
		c, err := voice.InspectAll([]string{path})
		if err != nil {
			t.Fatalf("InspectAll: %v", err)
		}
		return c
	}

	t.Run("selects the created profile", func(t *testing.T) {
		api := tu.NewMockStudio()
		st := newTestStudio(t, api)
		svc := voice.NewService(voice.NewValidator(voice.DefaultLimits()), api, shared.NewLogger(quietLogger()))

		profile, err := st.UploadVoice(ctx, nil, svc, clips(t), meta, true)
		if err != nil {
			t.Fatalf("UploadVoice: %v", err)
		}
		if profile.ID != "voice-1" || st.Session().Voice() != "voice-1" {
			t.Errorf("expected voice-1 selected, got profile %q session %q", profile.ID, st.Session().Voice())
		}
		if q := st.Session().Snapshot().Quality; q == nil || !q.QualityOK {
			t.Errorf("expected quality report to be stored, got %+v", q)
		}
	})

	t.Run("missing consent never uploads", func(t *testing.T) {
		api := tu.NewMockStudio()
		st := newTestStudio(t, api)
		st.Session().SetVoice("bn_f_soft")
		svc := voice.NewService(voice.NewValidator(voice.DefaultLimits()), api, shared.NewLogger(quietLogger()))

		_, err := st.UploadVoice(ctx, nil, svc, clips(t), meta, false)
		if !errors.Is(err, shared.ErrConsentRequired) {
			t.Fatalf("expected ErrConsentRequired, got %v", err)
		}
		if api.Uploads != 0 {
			t.Errorf("expected no upload, got %d", api.Uploads)
		}
		if st.Session().Voice() != "bn_f_soft" {
			t.Errorf("voice should be unchanged, got %q", st.Session().Voice())
		}
	})
}
