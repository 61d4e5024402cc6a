package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// Backend endpoint paths.
const (
	PathProjects      = "/api/projects"
	PathMelody        = "/api/generate/melody"
	PathInstrumental  = "/api/generate/instrumental"
	PathMix           = "/api/mix"
	PathVideo         = "/api/generate/video"
	PathFull          = "/api/generate/create"
	PathVoiceUpload   = "/api/upload/voice"
	pathJobStatusTmpl = "/api/job/%s/status"
)

// JobStatusPath returns the status endpoint for jobID.
func JobStatusPath(jobID string) string {
	return fmt.Sprintf(pathJobStatusTmpl, url.PathEscape(jobID))
}

// StudioClient implements [StudioAPI] over an [APIService].
type StudioClient struct {
	api      *APIService
	validate *validator.Validate
}

// NewStudioClient creates a StudioClient.
func NewStudioClient(api *APIService) *StudioClient {
	return &StudioClient{api: api, validate: validator.New()}
}

// CreateProject calls POST /api/projects.
func (c *StudioClient) CreateProject(ctx context.Context, req models.CreateProjectRequest) (string, error) {
	if req.Instruments == nil {
		req.Instruments = []string{}
	}
	var out models.CreateProjectResponse
	if err := c.postJSON(ctx, PathProjects, req, &out); err != nil {
		return "", err
	}
	if out.ProjectID == "" {
		return "", fmt.Errorf("%w: POST %s: response missing projectId", shared.ErrAPIRequest, PathProjects)
	}
	return out.ProjectID, nil
}

func (c *StudioClient) GenerateMelody(ctx context.Context, req models.MelodyRequest) (string, error) {
	return c.submit(ctx, PathMelody, req)
}

func (c *StudioClient) GenerateInstrumental(ctx context.Context, req models.InstrumentalRequest) (string, error) {
	if req.Instruments == nil {
		req.Instruments = []string{}
	}
	return c.submit(ctx, PathInstrumental, req)
}

func (c *StudioClient) Mix(ctx context.Context, req models.MixRequest) (string, error) {
	if req.Stems == nil {
		req.Stems = []string{}
	}
	return c.submit(ctx, PathMix, req)
}

func (c *StudioClient) GenerateVideo(ctx context.Context, req models.VideoRequest) (string, error) {
	return c.submit(ctx, PathVideo, req)
}

func (c *StudioClient) GenerateFull(ctx context.Context, req models.FullRequest) (string, error) {
	if req.Instruments == nil {
		req.Instruments = []string{}
	}
	return c.submit(ctx, PathFull, req)
}

// JobStatus calls GET /api/job/{jobId}/status.
func (c *StudioClient) JobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	path := JobStatusPath(jobID)
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", shared.ErrAPIRequest, path, err)
	}
	if !resp.OK() {
		return nil, statusError(http.MethodGet, path, resp)
	}

	var job models.Job
	if err := json.Unmarshal(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("%w: GET %s: failed to decode job: %v", shared.ErrAPIRequest, path, err)
	}
	job.ID = jobID
	return &job, nil
}

// UploadVoice calls POST /api/upload/voice with repeated "files" parts and
// name, locale and gender fields.
func (c *StudioClient) UploadVoice(ctx context.Context, files []models.VoiceFile, meta models.VoiceMetadata) (*models.VoiceProfile, error) {
	if err := c.check(meta); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", shared.ErrValidation)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeVoiceForm(mw, files, meta))
	}()

	resp, err := c.api.Do(ctx, http.MethodPost, PathVoiceUpload, mw.FormDataContentType(), pr)
	pr.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %v", shared.ErrAPIRequest, PathVoiceUpload, err)
	}
	if !resp.OK() {
		if text := strings.TrimSpace(string(resp.Body)); text != "" {
			return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, text)
		}
		return nil, fmt.Errorf("%w: Upload failed: %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var out struct {
		VoiceProfileID string                `json:"voiceProfileId"`
		QualityReport  *models.QualityReport `json:"qualityReport"`
		Quality        *models.QualityReport `json:"quality"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("%w: POST %s: failed to decode upload response: %v", shared.ErrAPIRequest, PathVoiceUpload, err)
	}

	profile := &models.VoiceProfile{ID: out.VoiceProfileID, Quality: out.QualityReport}
	if profile.Quality == nil {
		profile.Quality = out.Quality
	}
	return profile, nil
}

func writeVoiceForm(mw *multipart.Writer, files []models.VoiceFile, meta models.VoiceMetadata) error {
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	for k, v := range map[string]string{
		"name":   meta.Name,
		"locale": string(meta.Locale),
		"gender": string(meta.Gender),
	} {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	return mw.Close()
}

// submit posts a job-creation payload and returns the jobId.
func (c *StudioClient) submit(ctx context.Context, path string, payload any) (string, error) {
	var out models.JobAccepted
	if err := c.postJSON(ctx, path, payload, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("%w: POST %s: response missing jobId", shared.ErrAPIRequest, path)
	}
	return out.JobID, nil
}

func (c *StudioClient) postJSON(ctx context.Context, path string, payload, out any) error {
	if err := c.check(payload); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.api.Post(ctx, path, data)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", shared.ErrAPIRequest, path, err)
	}
	if !resp.OK() {
		return statusError(http.MethodPost, path, resp)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: POST %s: failed to decode response: %v", shared.ErrAPIRequest, path, err)
	}
	return nil
}

func (c *StudioClient) check(payload any) error {
	if err := c.validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", shared.ErrValidation, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

func statusError(method, path string, resp *APIResponse) error {
	body := strings.TrimSpace(string(resp.Body))
	if body == "" {
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, path, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, body)
}
