package server

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/services"
	"github.com/desertthunder/songsmith/internal/shared"
)

// Job kinds served by the mock backend.
const (
	KindMelody       = "melody"
	KindInstrumental = "instrumental"
	KindMix          = "mix"
	KindVideo        = "video"
	KindFull         = "full"
)

var stages = map[string][]string{
	KindMelody:       {"Analyzing lyrics", "Composing melody", "Aligning syllables", "Rendering guide vocal"},
	KindInstrumental: {"Arranging", "Rendering instruments", "Bouncing stems"},
	KindMix:          {"Balancing stems", "Applying effects", "Mastering"},
	KindVideo:        {"Analyzing audio", "Rendering scenes", "Encoding"},
	KindFull:         {"Writing melody", "Arranging", "Singing", "Mixing", "Rendering video"},
}

// MockOptions configures the mock backend.
type MockOptions struct {
	// Step is how far a job advances per status poll, in percent (default 25).
	Step float64
	// Fail lists job kinds that end in "error".
	Fail map[string]bool
	// Headers, when set, must be present on every request.
	Headers map[string]string
}

type mockJob struct {
	id        string
	kind      string
	projectID string
	polls     int
	progress  float64
	payload   any
}

type mockProject struct {
	id  string
	req models.CreateProjectRequest
}

type statusResponse struct {
	Status   models.JobStatus `json:"status"`
	Progress float64          `json:"progress"`
	Message  string           `json:"message"`
	Result   map[string]any   `json:"result,omitempty"`
}

// MockBackend is an in-memory studio backend. Jobs advance by a fixed step
// on every status poll and produce relative /media URLs it also serves.
type MockBackend struct {
	mu       sync.Mutex
	projects map[string]*mockProject
	jobs     map[string]*mockJob
	opts     MockOptions
	validate *validator.Validate
	logger   *log.Logger
	router   *BasicRouter
	counter  int
}

// NewMockBackend creates a mock backend with request logging and panic recovery.
func NewMockBackend(opts MockOptions, logger *log.Logger) *MockBackend {
	if opts.Step <= 0 {
		opts.Step = 25
	}
	if opts.Fail == nil {
		opts.Fail = map[string]bool{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	m := &MockBackend{
		projects: make(map[string]*mockProject),
		jobs:     make(map[string]*mockJob),
		opts:     opts,
		validate: validator.New(),
		logger:   logger,
		router:   NewBasicRouter(),
	}

	m.router.Use(RecoverMiddleware(logger), LoggingMiddleware(logger))
	if len(opts.Headers) > 0 {
		m.router.Use(RequireHeaders(opts.Headers))
	}
	m.router.HandleFunc(http.MethodPost, services.PathProjects, m.createProject)
	m.router.HandleFunc(http.MethodPost, services.PathMelody, m.generate(KindMelody, func() any { return &models.MelodyRequest{} }))
	m.router.HandleFunc(http.MethodPost, services.PathInstrumental, m.generate(KindInstrumental, func() any { return &models.InstrumentalRequest{} }))
	m.router.HandleFunc(http.MethodPost, services.PathMix, m.generate(KindMix, func() any { return &models.MixRequest{} }))
	m.router.HandleFunc(http.MethodPost, services.PathVideo, m.generate(KindVideo, func() any { return &models.VideoRequest{} }))
	m.router.HandleFunc(http.MethodPost, services.PathFull, m.generate(KindFull, func() any { return &models.FullRequest{} }))
	m.router.HandleFunc(http.MethodGet, "/api/job/{jobId}/status", m.jobStatus)
	m.router.HandleFunc(http.MethodPost, services.PathVoiceUpload, m.uploadVoice)
	m.router.HandleFunc(http.MethodGet, "/media/{file...}", m.media)
	return m
}

// ServeHTTP implements [http.Handler].
func (m *MockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (m *MockBackend) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %v", err)
	}
	if err := m.validate.Struct(v); err != nil {
		return err
	}
	return nil
}

func (m *MockBackend) createProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := m.decode(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	m.mu.Lock()
	m.counter++
	id := fmt.Sprintf("proj_%d_%s", m.counter, uuid.NewString()[:8])
	m.projects[id] = &mockProject{id: id, req: req}
	m.mu.Unlock()

	m.logger.Debug("project created", "project_id", id, "name", req.Name, "instruments", len(req.Instruments))
	writeJSON(w, http.StatusOK, models.CreateProjectResponse{ProjectID: id})
}

// projectIDOf reads the projectId field shared by every generation request.
func projectIDOf(req any) string {
	switch v := req.(type) {
	case *models.MelodyRequest:
		return v.ProjectID
	case *models.InstrumentalRequest:
		return v.ProjectID
	case *models.MixRequest:
		return v.ProjectID
	case *models.VideoRequest:
		return v.ProjectID
	case *models.FullRequest:
		return v.ProjectID
	}
	return ""
}

func (m *MockBackend) generate(kind string, newReq func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := newReq()
		if err := m.decode(r, req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		projectID := projectIDOf(req)
		m.mu.Lock()
		if _, ok := m.projects[projectID]; !ok {
			m.mu.Unlock()
			writeDetail(w, http.StatusNotFound, "project not found: "+projectID)
			return
		}
		m.counter++
		job := &mockJob{
			id:        fmt.Sprintf("job_%d_%s", m.counter, uuid.NewString()[:8]),
			kind:      kind,
			projectID: projectID,
			payload:   req,
		}
		m.jobs[job.id] = job
		m.mu.Unlock()

		m.logger.Debug("job accepted", "job", job.id, "kind", kind, "project_id", projectID)
		writeJSON(w, http.StatusOK, models.JobAccepted{JobID: job.id})
	}
}

func (m *MockBackend) jobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("jobId")

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "job not found: "+id)
		return
	}

	resp := m.advance(job)
	writeJSON(w, http.StatusOK, resp)
}

// advance moves job forward by one poll. The first poll reports "pending".
func (m *MockBackend) advance(job *mockJob) statusResponse {
	job.polls++
	if job.polls == 1 {
		return statusResponse{Status: models.JobPending, Progress: 0, Message: "Queued"}
	}

	job.progress = math.Min(100, job.progress+m.opts.Step)
	if job.progress < 100 {
		return statusResponse{Status: models.JobRunning, Progress: job.progress, Message: stageFor(job.kind, job.progress)}
	}

	if m.opts.Fail[job.kind] {
		return statusResponse{Status: models.JobError, Progress: 100, Message: job.kind + " failed: simulated backend error"}
	}
	return statusResponse{Status: models.JobDone, Progress: 100, Message: "Completed", Result: m.result(job)}
}

func stageFor(kind string, progress float64) string {
	names := stages[kind]
	if len(names) == 0 {
		return "Working"
	}
	i := int(progress / 100 * float64(len(names)))
	if i >= len(names) {
		i = len(names) - 1
	}
	return names[i]
}

func (m *MockBackend) mediaURL(job *mockJob, name string) string {
	return path.Join("/media", job.projectID, name)
}

func (m *MockBackend) result(job *mockJob) map[string]any {
	p := m.projects[job.projectID].req
	short := strings.SplitN(job.id, "_", 3)[1]

	switch req := job.payload.(type) {
	case *models.MelodyRequest:
		tempo := req.Tempo
		if tempo <= 0 {
			tempo = p.Tempo
		}
		return map[string]any{
			"timestamps":    lyricTimings(req.Lyrics, tempo),
			"midiUrl":       m.mediaURL(job, "melody_"+short+".mid"),
			"guideAudioUrl": m.mediaURL(job, "guide_"+short+".wav"),
		}
	case *models.InstrumentalRequest:
		stems := make([]models.Stem, 0, len(req.Instruments))
		for _, inst := range req.Instruments {
			slug := slugify(inst)
			stems = append(stems, models.Stem{Name: slug, URL: m.mediaURL(job, "stem_"+slug+"_"+short+".wav")})
		}
		return map[string]any{
			"instrumentalUrl": m.mediaURL(job, "instrumental_"+short+".wav"),
			"stems":           stems,
		}
	case *models.MixRequest:
		return map[string]any{"masterUrl": m.mediaURL(job, "master_"+short+".wav")}
	case *models.VideoRequest:
		thumbs := make([]string, 3)
		for i := range thumbs {
			thumbs[i] = m.mediaURL(job, fmt.Sprintf("thumb_%s_%d.jpg", short, i+1))
		}
		return map[string]any{
			"videoUrl":   m.mediaURL(job, "video_"+short+".mp4"),
			"thumbnails": thumbs,
		}
	case *models.FullRequest:
		return map[string]any{
			"masterUrl": m.mediaURL(job, "song_"+short+".wav"),
			"videoUrl":  m.mediaURL(job, "song_"+short+".mp4"),
			"midiUrl":   m.mediaURL(job, "song_"+short+".mid"),
			"vocalUrl":  m.mediaURL(job, "vocal_"+short+".wav"),
		}
	}
	return map[string]any{}
}

// lyricTimings gives each non-empty lyric line one 4-beat bar.
func lyricTimings(lyrics string, tempo int) []models.LyricSegment {
	if tempo <= 0 {
		tempo = 80
	}
	bar := 240 / float64(tempo)
	segs := []models.LyricSegment{}
	t := 0.0
	for _, line := range strings.Split(lyrics, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		start := math.Round(t*100) / 100
		end := math.Round((t+bar)*100) / 100
		segs = append(segs, models.LyricSegment{Start: start, End: end, Text: line})
		t += bar
	}
	return segs
}

func slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

// media serves placeholder files for result URLs.
func (m *MockBackend) media(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	var body []byte
	switch path.Ext(file) {
	case ".wav":
		body = silentWAV(8000, 1, 8000)
	case ".mid":
		body = []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96}
	default:
		body = []byte("songsmith mock media: " + file)
	}
	w.Header().Set("Content-Type", mimetype.Detect(body).String())
	w.Write(body)
}

// silentWAV builds a 16-bit PCM WAV file of n silent frames.
func silentWAV(sampleRate, channels, frames int) []byte {
	dataLen := frames * channels * 2
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

// wavInfo reads channel count, sample rate and duration from a canonical WAV header.
func wavInfo(head []byte, size int64) (channels, sampleRate int, duration float64, ok bool) {
	if len(head) < 44 || string(head[0:4]) != "RIFF" || string(head[8:12]) != "WAVE" {
		return 0, 0, 0, false
	}
	channels = int(binary.LittleEndian.Uint16(head[22:24]))
	sampleRate = int(binary.LittleEndian.Uint32(head[24:28]))
	byteRate := binary.LittleEndian.Uint32(head[28:32])
	if byteRate > 0 {
		duration = float64(size-44) / float64(byteRate)
	}
	return channels, sampleRate, math.Round(duration*100) / 100, true
}

func (m *MockBackend) uploadVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	meta := models.VoiceMetadata{
		Name:   r.FormValue("name"),
		Locale: models.Locale(r.FormValue("locale")),
		Gender: models.Gender(r.FormValue("gender")),
	}
	if err := m.validate.Struct(meta); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "no files uploaded")
		return
	}

	report := models.QualityReport{QualityOK: true, Clips: make([]models.ClipReport, 0, len(files))}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		f.Close()
		head = head[:n]

		clip := models.ClipReport{File: fh.Filename}
		if ch, sr, dur, ok := wavInfo(head, fh.Size); ok {
			clip.MonoOK, clip.SampleRate, clip.DurationSec = ch == 1, sr, dur
		} else if strings.HasPrefix(mimetype.Detect(head).String(), "audio/") {
			// Compressed audio: assume 128 kbps mono at 44.1 kHz.
			clip.MonoOK, clip.SampleRate = true, 44100
			clip.DurationSec = math.Round(float64(fh.Size)/16000*100) / 100
		}
		if !clip.MonoOK || clip.SampleRate < 16000 {
			report.QualityOK = false
		}
		report.Clips = append(report.Clips, clip)
	}

	profile := models.VoiceProfile{ID: "vp_" + uuid.NewString()[:8], Quality: &report}
	m.logger.Info("voice profile created", "id", profile.ID, "name", meta.Name, "clips", len(files), "quality_ok", report.QualityOK)
	writeJSON(w, http.StatusOK, profile)
}
