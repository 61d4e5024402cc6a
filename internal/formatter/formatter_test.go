package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songsmith/internal/models"
	th "github.com/desertthunder/songsmith/internal/testing"
)

func testSession() *models.Session {
	s := models.NewSession(models.Project{
		ID: "p-1", Name: "Monsoon", Tempo: 92, Key: "A minor", Style: "Sad", DurationSec: 125,
	})
	s.Tracks = []models.Track{
		{ID: "track-0001", Name: "Piano", Controls: models.DefaultControls()},
		{ID: "track-0002", Name: "Santoor", Controls: models.DefaultControls(), Muted: true, Solo: true},
	}
	s.Segments = []models.LyricSegment{
		{Start: 0, End: 2.5, Text: "first line"},
		{Start: 65.257, End: 70, Text: "second line"},
	}
	s.Results = models.ResultBundle{models.ResultMaster: "http://x/master.wav", models.ResultMidi: "http://x/m.mid"}
	s.Stems = models.Stems{{Name: "piano", URL: "http://x/piano.wav"}}
	s.Thumbnails = []string{"http://x/t1.jpg"}
	return s
}

func TestFormatters(t *testing.T) {
	t.Run("FormatTimestamp", func(t *testing.T) {
		tt := map[float64]string{0: "00:00.00", 2.5: "00:02.50", 65.257: "01:05.26", -1: "00:00.00", 600: "10:00.00"}
		for in, want := range tt {
			if got := FormatTimestamp(in); got != want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("FormatDuration", func(t *testing.T) {
		if got := FormatDuration(125); got != "2:05" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("TracksToCSV", func(t *testing.T) {
		data, err := TracksToCSV(testSession().Tracks)
		if err != nil {
			t.Fatalf("TracksToCSV failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "ID,Name,Volume,Pan,Reverb,Attack,Release,Humanize,Muted,Solo" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[2] != "track-0002,Santoor,0.8,0,0.2,0.01,0.2,0.3,true,true" {
			t.Errorf("unexpected row %q", lines[2])
		}
	})

	t.Run("LyricsToLRC", func(t *testing.T) {
		got := string(LyricsToLRC("Monsoon", testSession().Segments))
		want := "[ti:Monsoon]\n[00:00.00]first line\n[01:05.26]second line\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("SessionToText", func(t *testing.T) {
		out := string(SessionToText(testSession()))
		for _, want := range []string{"Project: Monsoon", "ID: p-1", "Tempo: 92 BPM", "2. Santoor [MS]", "masterUrl", "[00:00.00 - 00:02.50] first line"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}

		s := models.NewSession(models.Project{Name: "Draft", Tempo: 80})
		if !strings.Contains(string(SessionToText(s)), "(not created yet)") {
			t.Error("expected placeholder for missing project id")
		}
	})

	t.Run("SessionToMarkdown", func(t *testing.T) {
		out := string(SessionToMarkdown(testSession()))
		for _, want := range []string{"# Monsoon", "**Tempo**: 92 BPM", "2. Santoor (muted) (solo)", "- [masterUrl](http://x/master.wav)", "## Stems", "![Thumbnail 1](http://x/t1.jpg)"} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}
	})

	t.Run("QualityReportToText", func(t *testing.T) {
		out := string(QualityReportToText("vp-1", &models.QualityReport{
			QualityOK: false,
			Clips:     []models.ClipReport{{File: "a.wav", MonoOK: false, SampleRate: 22050, DurationSec: 4}},
		}))
		if !strings.Contains(out, "NEEDS ATTENTION") || !strings.Contains(out, "a.wav  not mono  22050 Hz  4.0s") {
			t.Errorf("unexpected report:\n%s", out)
		}
		if !strings.Contains(string(QualityReportToText("vp-2", nil)), "No quality report") {
			t.Error("expected placeholder for nil report")
		}
	})
}

func TestWriteSessionExport(t *testing.T) {
	t.Run("writes all files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		res, err := WriteSessionExport(testSession(), dir)
		if err != nil {
			t.Fatalf("WriteSessionExport: %v", err)
		}
		if len(res.Files()) != 3 {
			t.Errorf("expected 3 files, got %v", res.Files())
		}
		for _, f := range res.Files() {
			th.AssertFileExists(t, f)
		}
		if !strings.HasPrefix(th.MustReadFile(t, res.LyricsFile), "[ti:Monsoon]") {
			t.Error("unexpected LRC content")
		}
	})

	t.Run("skips lyrics without segments", func(t *testing.T) {
		s := testSession()
		s.Segments = nil
		res, err := WriteSessionExport(s, t.TempDir())
		if err != nil {
			t.Fatalf("WriteSessionExport: %v", err)
		}
		if res.LyricsFile != "" || len(res.Files()) != 2 {
			t.Errorf("expected no lyrics file, got %+v", res)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		os.WriteFile(file, []byte("x"), 0644)
		if _, err := WriteSessionExport(testSession(), filepath.Join(file, "sub")); err == nil {
			t.Error("expected error when directory cannot be created")
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "m.json")
		if err := WriteManifest(map[string]int{"files": 2}, path); err != nil {
			t.Fatalf("WriteManifest: %v", err)
		}
		if !strings.Contains(th.MustReadFile(t, path), `"files": 2`) {
			t.Error("unexpected manifest")
		}
	})
}
