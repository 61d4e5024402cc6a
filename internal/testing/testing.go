// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/songsmith/internal/models"
)

// MockStudio is a scripted, in-memory test double for [services.StudioAPI].
//
// Each submitted job gets the next script from Scripts; JobStatus returns the
// script's snapshots in order and repeats the last one.
type MockStudio struct {
	mu sync.Mutex

	ProjectID string
	Scripts   [][]models.Job

	// Errors injected per method name ("CreateProject", "Mix", "JobStatus", ...).
	Errors map[string]error

	// Gate, when set, blocks CreateProject until it is closed.
	Gate chan struct{}
	// Entered, when set, receives a value as CreateProject starts.
	Entered chan struct{}

	Calls        []string
	Requests     []any
	StatusCalls  map[string]int
	Uploads      int
	UploadedMeta models.VoiceMetadata
	Profile      *models.VoiceProfile

	jobs    map[string][]models.Job
	nextJob int
}

// NewMockStudio creates a MockStudio that hands out scripts in order.
func NewMockStudio(scripts ...[]models.Job) *MockStudio {
	return &MockStudio{
		ProjectID:   "proj-1",
		Scripts:     scripts,
		Errors:      make(map[string]error),
		StatusCalls: make(map[string]int),
		jobs:        make(map[string][]models.Job),
	}
}

// Count returns how many times method was called.
func (m *MockStudio) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request payload.
func (m *MockStudio) LastRequest() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

func (m *MockStudio) record(method string, req any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
	if req != nil {
		m.Requests = append(m.Requests, req)
	}
	return m.Errors[method]
}

func (m *MockStudio) CreateProject(ctx context.Context, req models.CreateProjectRequest) (string, error) {
	if m.Entered != nil {
		m.Entered <- struct{}{}
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := m.record("CreateProject", req); err != nil {
		return "", err
	}
	return m.ProjectID, nil
}

func (m *MockStudio) submit(method string, req any) (string, error) {
	if err := m.record(method, req); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("job-%d", m.nextJob+1)
	if m.nextJob < len(m.Scripts) {
		m.jobs[id] = m.Scripts[m.nextJob]
	}
	m.nextJob++
	return id, nil
}

func (m *MockStudio) GenerateMelody(ctx context.Context, req models.MelodyRequest) (string, error) {
	return m.submit("GenerateMelody", req)
}

func (m *MockStudio) GenerateInstrumental(ctx context.Context, req models.InstrumentalRequest) (string, error) {
	return m.submit("GenerateInstrumental", req)
}

func (m *MockStudio) Mix(ctx context.Context, req models.MixRequest) (string, error) {
	return m.submit("Mix", req)
}

func (m *MockStudio) GenerateVideo(ctx context.Context, req models.VideoRequest) (string, error) {
	return m.submit("GenerateVideo", req)
}

func (m *MockStudio) GenerateFull(ctx context.Context, req models.FullRequest) (string, error) {
	return m.submit("GenerateFull", req)
}

func (m *MockStudio) JobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	if err := m.record("JobStatus", nil); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	script, ok := m.jobs[jobID]
	if !ok || len(script) == 0 {
		return nil, fmt.Errorf("unknown job %s", jobID)
	}
	n := m.StatusCalls[jobID]
	m.StatusCalls[jobID] = n + 1
	if n >= len(script) {
		n = len(script) - 1
	}
	job := script[n]
	job.ID = jobID
	return &job, nil
}

func (m *MockStudio) UploadVoice(ctx context.Context, files []models.VoiceFile, meta models.VoiceMetadata) (*models.VoiceProfile, error) {
	if err := m.record("UploadVoice", nil); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	m.UploadedMeta = meta
	if m.Profile != nil {
		return m.Profile, nil
	}
	return &models.VoiceProfile{ID: "voice-1", Quality: &models.QualityReport{QualityOK: true}}, nil
}

// StatusSource returns status snapshots from a fixed script, one per call.
type StatusSource struct {
	mu     sync.Mutex
	Script []models.Job
	Err    error
	// ErrAt fails the call with this 0-based index when Err is set.
	ErrAt int
	calls int
}

// Calls returns the number of fetches made.
func (s *StatusSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// JobStatus implements the poller's status fetcher.
func (s *StatusSource) JobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.calls
	s.calls++
	if s.Err != nil && n == s.ErrAt {
		return nil, s.Err
	}
	if n >= len(s.Script) {
		n = len(s.Script) - 1
	}
	job := s.Script[n]
	job.ID = jobID
	return &job, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.Requests++
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// WriteSizedFile creates a file of size bytes under dir.
func WriteSizedFile(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	path := dir + string(os.PathSeparator) + name
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Failed to size %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
