package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/tasks"
	tu "github.com/desertthunder/songsmith/internal/testing"
)

type saver struct {
	mu    sync.Mutex
	saves []*models.Session
}

func (s *saver) save(snap *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, snap)
	return nil
}

func (s *saver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func newTestModel(t *testing.T, api *tu.MockStudio) (*Model, *saver) {
	t.Helper()
	cfg := shared.DefaultConfig()
	logger := shared.NewLogger(&strings.Builder{})
	sess := session.New(models.NewSession(session.NewProject(cfg.Project)), api, session.OptionsFromConfig(cfg.Project), logger)
	poller := tasks.NewPoller(api, time.Millisecond, 0, logger)
	studio := tasks.NewStudio(api, sess, poller, tasks.SettingsFromConfig(cfg), logger)

	sv := &saver{}
	return NewModel(context.Background(), studio, Options{Save: sv.save, Logger: logger, Export: tasks.ExportOpts{OutputDir: t.TempDir()}}), sv
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// run feeds cmd results back into the model until cmd is nil.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 200 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				run(t, m, c)
			}
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(t *testing.T, m *Model, msgs ...tea.KeyMsg) {
	t.Helper()
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		if m.view == StudioView {
			run(t, m, cmd)
		}
	}
}

func TestStudioKeys(t *testing.T) {
	t.Run("add mute and solo", func(t *testing.T) {
		m, sv := newTestModel(t, tu.NewMockStudio())

		press(t, m, runes("a"))
		if m.view != AddTrackView {
			t.Fatalf("expected add track view, got %v", m.view)
		}
		for _, r := range "flute" {
			m.Update(runes(string(r)))
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		tracks := m.sess.Tracks()
		if len(tracks) != 1 || tracks[0].Name != "Flute" {
			t.Fatalf("expected catalog-matched Flute, got %+v", tracks)
		}

		press(t, m, runes("m"), runes("s"))
		tr := m.sess.Tracks()[0]
		if !tr.Muted || !tr.Solo {
			t.Errorf("expected muted and solo, got %+v", tr)
		}
		if sv.count() < 3 {
			t.Errorf("expected saves after each change, got %d", sv.count())
		}
		if !strings.Contains(m.View(), "Flute [MS]") {
			t.Errorf("view should show flags:\n%s", m.View())
		}
	})

	t.Run("adjust controls", func(t *testing.T) {
		m, _ := newTestModel(t, tu.NewMockStudio())
		m.sess.AddTrack("Piano")
		m.refresh()

		press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
		if got := m.sess.Tracks()[0].Controls.Pan; got < 0.099 || got > 0.101 {
			t.Errorf("expected pan 0.1, got %v", got)
		}

		press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		for i := 0; i < 10; i++ {
			press(t, m, tea.KeyMsg{Type: tea.KeyRight})
		}
		if got := m.sess.Tracks()[0].Controls.Volume; got != 1 {
			t.Errorf("volume should clamp at 1, got %v", got)
		}
	})

	t.Run("remove track", func(t *testing.T) {
		m, _ := newTestModel(t, tu.NewMockStudio())
		m.sess.AddTrack("Piano")
		m.refresh()
		press(t, m, runes("x"))
		if len(m.sess.Tracks()) != 0 {
			t.Error("expected track removed")
		}
		if !strings.Contains(m.View(), "No tracks") {
			t.Error("expected empty hint")
		}
	})

	t.Run("edit lyrics", func(t *testing.T) {
		m, _ := newTestModel(t, tu.NewMockStudio())
		press(t, m, runes("L"))
		if m.view != LyricsView {
			t.Fatalf("expected lyrics view, got %v", m.view)
		}
		m.Update(runes("hello"))
		press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		if m.sess.Project().Lyrics != "hello" {
			t.Errorf("unexpected lyrics %q", m.sess.Project().Lyrics)
		}
		if m.view != StudioView {
			t.Errorf("expected studio view after save")
		}
	})
}

func TestGenerationFromTUI(t *testing.T) {
	t.Run("instrumental updates status and results", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{
			{Status: models.JobRunning, Progress: 50, Message: "Rendering"},
			{Status: models.JobDone, Progress: 100, Result: &models.JobResult{
				ExtraURLs: map[string]string{models.ResultInstrumental: "http://x/i.wav"},
			}},
		})
		m, sv := newTestModel(t, api)

		_, cmd := m.Update(runes("2"))
		if !m.busy {
			t.Fatal("expected busy while the job runs")
		}
		run(t, m, cmd)

		if m.busy {
			t.Error("expected idle after completion")
		}
		if m.err != nil {
			t.Fatalf("unexpected error %v", m.err)
		}
		if m.sess.Status() != "Instrumental ready" {
			t.Errorf("unexpected status %q", m.sess.Status())
		}
		if sv.count() == 0 {
			t.Error("expected the session to be saved")
		}

		press(t, m, runes("r"))
		if m.view != ResultsView || !strings.Contains(m.View(), "instrumentalUrl") {
			t.Errorf("results view should list the url:\n%s", m.View())
		}
	})

	t.Run("job error is shown", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{{Status: models.JobError, Message: "no GPU"}})
		m, _ := newTestModel(t, api)
		_, cmd := m.Update(runes("3"))
		run(t, m, cmd)
		if m.err == nil || !strings.Contains(m.View(), "no GPU") {
			t.Errorf("expected job error in view:\n%s", m.View())
		}
	})

	t.Run("second operation waits", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{{Status: models.JobDone}})
		api.Gate = make(chan struct{})
		m, _ := newTestModel(t, api)

		_, cmd := m.Update(runes("1"))
		_, second := m.Update(runes("2"))
		if second != nil || !strings.Contains(m.notice, "still running") {
			t.Errorf("expected busy notice, got %q", m.notice)
		}
		close(api.Gate)
		run(t, m, cmd)
		if api.Count("GenerateInstrumental") != 0 {
			t.Error("second operation should not have been submitted")
		}
	})
}
