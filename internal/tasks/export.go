package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// ExportOpts contains configuration for result exports.
type ExportOpts struct {
	OutputDir  string       // Base output directory (default: songsmith_export_{epoch})
	NumWorkers int          // Concurrent downloads (default: 3, max 10)
	RateLimit  float64      // Downloads started per second (default: 4)
	BaseURL    string       // Resolves relative result URLs
	Client     *http.Client // HTTP client for downloads (default: http.DefaultClient)
}

// DownloadResult is the outcome of fetching one result file.
type DownloadResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	File    string `json:"file,omitempty"`
	Bytes   int64  `json:"bytes"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ExportResult summarizes an export and is written as export_manifest.json.
type ExportResult struct {
	ProjectID       string           `json:"projectId,omitempty"`
	ProjectName     string           `json:"projectName"`
	ExportedAt      time.Time        `json:"exportedAt"`
	OutputDirectory string           `json:"outputDirectory"`
	Downloads       []DownloadResult `json:"downloads"`
	Files           []string         `json:"files"`
	Succeeded       int              `json:"succeeded"`
	Failed          int              `json:"failed"`
	ManifestPath    string           `json:"-"`
}

type download struct {
	name string
	url  string
	dest string
}

// exportPlan lists every URL of the session with its destination file.
func exportPlan(s *models.Session, dir string) []download {
	var plan []download
	for _, k := range s.Results.Keys() {
		plan = append(plan, download{name: k, url: s.Results[k], dest: filepath.Join(dir, k+urlExt(s.Results[k]))})
	}
	for i, st := range s.Stems {
		name := st.Name
		if name == "" {
			name = fmt.Sprintf("stem_%d", i+1)
		}
		plan = append(plan, download{name: "stems/" + name, url: st.URL, dest: filepath.Join(dir, "stems", name+urlExt(st.URL))})
	}
	for i, u := range s.Thumbnails {
		name := fmt.Sprintf("thumb_%d", i+1)
		plan = append(plan, download{name: "thumbnails/" + name, url: u, dest: filepath.Join(dir, "thumbnails", name+urlExt(u))})
	}
	return plan
}

func urlExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

// Export downloads every result URL of the session concurrently with rate
// limiting, then writes the project files and a manifest. Failed downloads
// are recorded in the result and do not abort the export.
func (s *Studio) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("songsmith_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 4.0
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}

	base, err := parseBase(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	snap := s.session.Snapshot()
	plan := exportPlan(snap, opts.OutputDir)
	result := &ExportResult{
		ProjectID:       snap.Project.ID,
		ProjectName:     snap.Project.Name,
		ExportedAt:      time.Now().UTC(),
		OutputDirectory: opts.OutputDir,
		Downloads:       make([]DownloadResult, len(plan)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)

	var mu sync.Mutex
	completed := 0
	for i, d := range plan {
		s.sendProgress(progress, downloadingUpdate(i+1, len(plan), d.name))
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("%w: export", shared.ErrCancelled)
			}

			res := DownloadResult{Name: d.name, URL: d.url}
			n, err := fetchTo(gctx, opts.Client, resolveURL(base, d.url), d.dest)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.File, res.Bytes, res.Success = d.dest, n, true
			}

			mu.Lock()
			defer mu.Unlock()
			result.Downloads[i] = res
			completed++
			if err != nil {
				result.Failed++
				s.logger.Warn("download failed", "name", d.name, "url", d.url, "error", err)
				s.sendProgress(progress, downloadFailedUpdate(completed, len(plan), d.name, err))
			} else {
				result.Succeeded++
				s.sendProgress(progress, downloadCompletedUpdate(completed, len(plan), d.name, n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	files, err := formatter.WriteSessionExport(snap, opts.OutputDir)
	if err != nil {
		return result, fmt.Errorf("downloads completed but failed to write project files: %w", err)
	}
	for _, d := range result.Downloads {
		if d.Success {
			result.Files = append(result.Files, d.File)
		}
	}
	result.Files = append(result.Files, files.Files()...)

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	s.logger.Info("export complete", "dir", opts.OutputDir, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func parseBase(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", shared.ErrInvalidConfig, raw, err)
	}
	return u, nil
}

func resolveURL(base *url.URL, raw string) string {
	if base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	return base.ResolveReference(ref).String()
}

func fetchTo(ctx context.Context, client *http.Client, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: GET %s: status %d", shared.ErrAPIRequest, rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return n, nil
}
