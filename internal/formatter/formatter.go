// package formatter renders studio sessions as Markdown, CSV, LRC and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// FormatTimestamp renders seconds as mm:ss.cc.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(math.Round(sec * 100))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TracksToCSV renders tracks with columns: ID, Name, Volume, Pan, Reverb, Attack, Release, Humanize, Muted, Solo
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Volume", "Pan", "Reverb", "Attack", "Release", "Humanize", "Muted", "Solo"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{t.ID, t.Name}
		for _, c := range models.ControlNames {
			record = append(record, formatFloat(t.Controls.Get(c)))
		}
		record = append(record, strconv.FormatBool(t.Muted), strconv.FormatBool(t.Solo))
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// LyricsToLRC renders timed lyrics in LRC format.
func LyricsToLRC(title string, segs []models.LyricSegment) []byte {
	var buf bytes.Buffer
	if title != "" {
		fmt.Fprintf(&buf, "[ti:%s]\n", title)
	}
	for _, s := range segs {
		fmt.Fprintf(&buf, "[%s]%s\n", FormatTimestamp(s.Start), s.Text)
	}
	return buf.Bytes()
}

// TrackLine renders one track for terminal output.
func TrackLine(i int, t models.Track) string {
	var flags []string
	if t.Muted {
		flags = append(flags, "M")
	}
	if t.Solo {
		flags = append(flags, "S")
	}
	flagPart := ""
	if len(flags) > 0 {
		flagPart = " [" + strings.Join(flags, "") + "]"
	}
	c := t.Controls
	return fmt.Sprintf("%d. %s%s  vol=%s pan=%s rev=%s atk=%s rel=%s hum=%s  (%s)",
		i+1, t.Name, flagPart,
		formatFloat(c.Volume), formatFloat(c.Pan), formatFloat(c.Reverb),
		formatFloat(c.Attack), formatFloat(c.Release), formatFloat(c.Humanize),
		shortID(t.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SessionToText renders a session summary for `project show`.
func SessionToText(s *models.Session) []byte {
	var buf bytes.Buffer
	p := s.Project

	projectID := p.ID
	if projectID == "" {
		projectID = "(not created yet)"
	}
	fmt.Fprintf(&buf, "Project: %s\n", p.Name)
	fmt.Fprintf(&buf, "ID: %s\n", projectID)
	fmt.Fprintf(&buf, "Tempo: %d BPM  Key: %s  Style: %s  Duration: %s\n", p.Tempo, p.Key, p.Style, FormatDuration(p.DurationSec))
	if s.VoiceID != "" {
		fmt.Fprintf(&buf, "Voice: %s\n", s.VoiceID)
	}
	fmt.Fprintf(&buf, "Status: %s\n", s.Status)

	fmt.Fprintf(&buf, "\nTracks: %d\n", len(s.Tracks))
	for i, t := range s.Tracks {
		fmt.Fprintf(&buf, "  %s\n", TrackLine(i, t))
	}

	if len(s.Segments) > 0 {
		fmt.Fprintf(&buf, "\nLyrics:\n")
		for _, seg := range s.Segments {
			fmt.Fprintf(&buf, "  [%s - %s] %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End), seg.Text)
		}
	} else if p.Lyrics != "" {
		fmt.Fprintf(&buf, "\nLyrics (untimed):\n%s\n", p.Lyrics)
	}

	if len(s.Results) > 0 {
		fmt.Fprintf(&buf, "\n")
		buf.Write(ResultsToText(s.Results))
	}
	return buf.Bytes()
}

// ResultsToText lists result URLs sorted by key.
func ResultsToText(b models.ResultBundle) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Results: %d\n", len(b))
	for _, k := range b.Keys() {
		fmt.Fprintf(&buf, "  %-14s %s\n", k, b[k])
	}
	return buf.Bytes()
}

// QualityReportToText renders an upload quality report.
func QualityReportToText(profileID string, q *models.QualityReport) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Voice profile: %s\n", profileID)
	if q == nil {
		buf.WriteString("No quality report returned\n")
		return buf.Bytes()
	}

	verdict := "OK"
	if !q.QualityOK {
		verdict = "NEEDS ATTENTION"
	}
	fmt.Fprintf(&buf, "Quality: %s\n", verdict)
	for _, c := range q.Clips {
		mono := "mono"
		if !c.MonoOK {
			mono = "not mono"
		}
		fmt.Fprintf(&buf, "  %s  %s  %d Hz  %.1fs\n", c.File, mono, c.SampleRate, c.DurationSec)
	}
	return buf.Bytes()
}

// SessionToMarkdown renders a session as a Markdown document.
func SessionToMarkdown(s *models.Session) []byte {
	var buf bytes.Buffer
	p := s.Project

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)
	fmt.Fprintf(&buf, "**Tempo**: %d BPM\n", p.Tempo)
	fmt.Fprintf(&buf, "**Key**: %s\n", p.Key)
	fmt.Fprintf(&buf, "**Style**: %s\n", p.Style)
	fmt.Fprintf(&buf, "**Duration**: %s\n", FormatDuration(p.DurationSec))
	if p.ID != "" {
		fmt.Fprintf(&buf, "**Project ID**: %s\n", p.ID)
	}
	if s.VoiceID != "" {
		fmt.Fprintf(&buf, "**Voice**: %s\n", s.VoiceID)
	}

	buf.WriteString("\n## Tracks\n\n")
	if len(s.Tracks) == 0 {
		buf.WriteString("_No tracks_\n")
	}
	for i, t := range s.Tracks {
		state := ""
		if t.Muted {
			state += " (muted)"
		}
		if t.Solo {
			state += " (solo)"
		}
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, t.Name, state)
	}

	if len(s.Segments) > 0 || p.Lyrics != "" {
		buf.WriteString("\n## Lyrics\n\n")
		if len(s.Segments) > 0 {
			for _, seg := range s.Segments {
				fmt.Fprintf(&buf, "- `%s` %s\n", FormatTimestamp(seg.Start), seg.Text)
			}
		} else {
			fmt.Fprintf(&buf, "%s\n", p.Lyrics)
		}
	}

	if len(s.Results) > 0 {
		buf.WriteString("\n## Results\n\n")
		for _, k := range s.Results.Keys() {
			fmt.Fprintf(&buf, "- [%s](%s)\n", k, s.Results[k])
		}
	}

	if len(s.Stems) > 0 {
		buf.WriteString("\n## Stems\n\n")
		for _, st := range s.Stems {
			fmt.Fprintf(&buf, "- [%s](%s)\n", st.Name, st.URL)
		}
	}

	if len(s.Thumbnails) > 0 {
		buf.WriteString("\n## Thumbnails\n\n")
		for i, u := range s.Thumbnails {
			fmt.Fprintf(&buf, "![Thumbnail %d](%s)\n", i+1, u)
		}
	}
	return buf.Bytes()
}

// SessionExportResult contains the paths of files created by WriteSessionExport
type SessionExportResult struct {
	MarkdownFile string
	TracksFile   string
	LyricsFile   string
}

// Files lists every file written.
func (r *SessionExportResult) Files() []string {
	files := []string{r.MarkdownFile, r.TracksFile}
	if r.LyricsFile != "" {
		files = append(files, r.LyricsFile)
	}
	return files
}

// WriteSessionExport writes project.md, tracks.csv and, when timed lyrics exist, lyrics.lrc into dir.
func WriteSessionExport(s *models.Session, dir string) (*SessionExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &SessionExportResult{
		MarkdownFile: filepath.Join(dir, "project.md"),
		TracksFile:   filepath.Join(dir, "tracks.csv"),
	}

	if err := os.WriteFile(result.MarkdownFile, SessionToMarkdown(s), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	csvData, err := TracksToCSV(s.Tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(result.TracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	if len(s.Segments) > 0 {
		result.LyricsFile = filepath.Join(dir, "lyrics.lrc")
		if err := os.WriteFile(result.LyricsFile, LyricsToLRC(s.Project.Name, s.Segments), 0644); err != nil {
			return nil, fmt.Errorf("failed to write LRC file: %w", err)
		}
	}
	return result, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
