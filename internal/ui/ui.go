package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StudioView ViewState = iota
	AddTrackView
	LyricsView
	ResultsView
)

// controlStep is how much one key press moves a control.
const controlStep = 0.05

// SaveFunc persists the session after a change.
type SaveFunc func(*models.Session) error

// Options configures the studio model.
type Options struct {
	Save    SaveFunc
	Export  tasks.ExportOpts
	BaseURL string // resolves relative result URLs opened in the browser
	Logger  *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	studio *tasks.Studio
	sess   *session.ProjectSession
	opts   Options
	logger *log.Logger

	width   int
	height  int
	tracks  list.Model
	results list.Model
	input   textinput.Model
	lyrics  textarea.Model
	spin    spinner.Model
	bar     progress.Model
	help    help.Model
	keys    keyMap

	control int // index into models.ControlNames

	busy         bool
	running      string
	cancel       context.CancelFunc
	progressChan chan tasks.ProgressUpdate
	doneChan     chan opResult
	progress     tasks.ProgressUpdate

	notice string
	err    error
}

// NewModel creates a new TUI model for studio.
func NewModel(ctx context.Context, studio *tasks.Studio, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	tracks := list.New(nil, list.NewDefaultDelegate(), 60, 14)
	tracks.Title = "Tracks"
	tracks.SetShowHelp(false)
	tracks.SetFilteringEnabled(false)

	results := list.New(nil, list.NewDefaultDelegate(), 60, 14)
	results.Title = "Results"
	results.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "Instrument name"
	input.ShowSuggestions = true
	input.SetSuggestions(models.Instruments)

	lyrics := textarea.New()
	lyrics.Placeholder = "One line per phrase"
	lyrics.SetWidth(60)
	lyrics.SetHeight(10)

	m := &Model{
		ctx:     ctx,
		view:    StudioView,
		studio:  studio,
		sess:    studio.Session(),
		opts:    opts,
		logger:  opts.Logger,
		tracks:  tracks,
		results: results,
		input:   input,
		lyrics:  lyrics,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.refresh()
	return m
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracks.SetSize(msg.Width-4, max(msg.Height-16, 6))
		m.results.SetSize(msg.Width-4, max(msg.Height-6, 6))
		m.lyrics.SetWidth(msg.Width - 4)
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case StudioView:
			return m.handleStudioKeys(msg)
		case AddTrackView:
			return m.handleAddTrackKeys(msg)
		case LyricsView:
			return m.handleLyricsKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgOperationComplete:
		res := msg.data.(opResult)
		m.busy, m.running, m.cancel = false, "", nil
		m.progressChan, m.doneChan = nil, nil
		m.err = res.err
		m.notice = res.notice
		if res.err != nil && errors.Is(res.err, shared.ErrCancelled) {
			m.err, m.notice = nil, res.name+" cancelled"
		}
		m.refresh()
		return m, m.save()

	case MsgSaved:
		if err, _ := msg.data.(error); err != nil {
			m.err = fmt.Errorf("failed to save session: %w", err)
		}
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case AddTrackView:
		return m.renderAddTrack()
	case LyricsView:
		return m.renderLyrics()
	case ResultsView:
		return m.renderResults()
	default:
		return m.renderStudio()
	}
}

func (m *Model) selectedTrack() (models.Track, bool) {
	item, ok := m.tracks.SelectedItem().(trackItem)
	return item.track, ok
}

func (m *Model) selectedControl() models.ControlName {
	return models.ControlNames[m.control]
}

func (m *Model) handleStudioKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.mute), key.Matches(msg, m.keys.solo):
		t, ok := m.selectedTrack()
		if !ok {
			return m, nil
		}
		toggle := m.sess.ToggleMute
		if key.Matches(msg, m.keys.solo) {
			toggle = m.sess.ToggleSolo
		}
		if _, err := toggle(t.ID); err != nil {
			m.err = err
		}
		m.refresh()
		return m, m.save()

	case key.Matches(msg, m.keys.remove):
		if t, ok := m.selectedTrack(); ok {
			if err := m.sess.RemoveTrack(t.ID); err != nil {
				m.err = err
			}
			m.notice = "Removed " + t.Name
			m.refresh()
			return m, m.save()
		}
		return m, nil

	case key.Matches(msg, m.keys.nextControl):
		m.control = (m.control + 1) % len(models.ControlNames)
		return m, nil

	case key.Matches(msg, m.keys.prevControl):
		m.control = (m.control + len(models.ControlNames) - 1) % len(models.ControlNames)
		return m, nil

	case key.Matches(msg, m.keys.decrease), key.Matches(msg, m.keys.increase):
		t, ok := m.selectedTrack()
		if !ok {
			return m, nil
		}
		delta := controlStep
		if key.Matches(msg, m.keys.decrease) {
			delta = -controlStep
		}
		c := m.selectedControl()
		if _, err := m.sess.UpdateControl(t.ID, c, t.Controls.Get(c)+delta); err != nil {
			m.err = err
		}
		m.refresh()
		return m, m.save()

	case key.Matches(msg, m.keys.add):
		m.view = AddTrackView
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.lyrics):
		m.view = LyricsView
		m.lyrics.SetValue(m.sess.Project().Lyrics)
		return m, m.lyrics.Focus()

	case key.Matches(msg, m.keys.results):
		m.view = ResultsView
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.cancel):
		if m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.melody):
		lyrics := m.sess.Project().Lyrics
		return m, m.start("Melody", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			_, err := m.studio.GenerateMelody(ctx, p, lyrics)
			return "", err
		})
	case key.Matches(msg, m.keys.instrumental):
		return m, m.start("Instrumental", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			_, err := m.studio.GenerateInstrumental(ctx, p)
			return "", err
		})
	case key.Matches(msg, m.keys.mix):
		return m, m.start("Mix", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			_, err := m.studio.Mix(ctx, p)
			return "", err
		})
	case key.Matches(msg, m.keys.video):
		return m, m.start("Video", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			_, err := m.studio.GenerateVideo(ctx, p)
			return "", err
		})
	case key.Matches(msg, m.keys.full):
		return m, m.start("Full song", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			_, err := m.studio.GenerateFull(ctx, p)
			return "", err
		})
	case key.Matches(msg, m.keys.export):
		opts := m.opts.Export
		return m, m.start("Export", func(ctx context.Context, p chan<- tasks.ProgressUpdate) (string, error) {
			res, err := m.studio.Export(ctx, p, opts)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Exported %d files to %s (%d failed)", len(res.Files), res.OutputDirectory, res.Failed), nil
		})
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleAddTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.view = StudioView
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.view = StudioView
		if name == "" {
			return m, nil
		}
		t, err := m.sess.AddTrack(name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.notice = "Added " + t.Name
		m.refresh()
		m.tracks.Select(len(m.tracks.Items()) - 1)
		return m, m.save()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleLyricsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.view = StudioView
		m.lyrics.Blur()
		return m, nil
	case key.Matches(msg, m.keys.save):
		m.sess.SetLyrics(m.lyrics.Value())
		m.lyrics.Blur()
		m.view = StudioView
		m.notice = "Lyrics saved"
		return m, m.save()
	}

	var cmd tea.Cmd
	m.lyrics, cmd = m.lyrics.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = StudioView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			target := item.url
			if strings.HasPrefix(target, "/") && m.opts.BaseURL != "" {
				target = strings.TrimRight(m.opts.BaseURL, "/") + target
			}
			if err := shared.OpenURL(target); err != nil {
				m.err = err
			} else {
				m.notice = "Opened " + item.name
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// refresh reloads list items from the session.
func (m *Model) refresh() {
	idx := m.tracks.Index()
	m.tracks.SetItems(trackItems(m.sess.Tracks()))
	if n := len(m.tracks.Items()); n > 0 {
		m.tracks.Select(min(idx, n-1))
	}
	m.results.SetItems(resultItems(m.sess.Snapshot()))
}

func (m *Model) save() tea.Cmd {
	if m.opts.Save == nil {
		return nil
	}
	snap := m.sess.Snapshot()
	return func() tea.Msg {
		return savedMsg(m.opts.Save(snap))
	}
}

type opFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error)

// start runs op in the background. Only one operation runs at a time.
func (m *Model) start(name string, op opFunc) tea.Cmd {
	if m.busy {
		m.notice = m.running + " is still running"
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.busy, m.running, m.cancel = true, name, cancel
	m.err, m.notice = nil, ""
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan opResult, 1)

	progressChan, doneChan := m.progressChan, m.doneChan
	go func() {
		defer cancel()
		notice, err := op(ctx, progressChan)
		doneChan <- opResult{name: name, notice: notice, err: err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, doneChan := m.progressChan, m.doneChan
	if progressChan == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progressChan
		if !ok {
			return operationCompleteMsg(<-doneChan)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderHeader() string {
	p := m.sess.Project()
	id := p.ID
	if id == "" {
		id = "not created"
	}
	title := styles.title.Render("♪ " + p.Name)
	info := fmt.Sprintf("%d BPM • %s • %s • %s • project %s",
		p.Tempo, p.Key, p.Style, formatter.FormatDuration(p.DurationSec), id)
	if v := m.sess.Voice(); v != "" {
		info += " • voice " + v
	}
	return title + "\n" + styles.help.Render(info)
}

func (m *Model) renderControls() string {
	t, ok := m.selectedTrack()
	if !ok {
		return styles.help.Render("No tracks. Press a to add one.")
	}
	var rows []string
	for i, c := range models.ControlNames {
		lo, hi := c.Range()
		v := t.Controls.Get(c)
		filled := int(shared.Clamp((v-lo)/(hi-lo), 0, 1) * 20)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
		row := fmt.Sprintf("%-9s %s %+.2f", c, bar, v)
		if i == m.control {
			row = styles.selected.Render(row)
		}
		rows = append(rows, row)
	}
	return styles.box.Render(t.Name + "\n" + strings.Join(rows, "\n"))
}

func (m *Model) renderStatus() string {
	status := m.sess.Status()
	if m.busy {
		status = m.spin.View() + " " + status
	}
	lines := []string{status}
	if m.busy || m.progress.Total > 0 {
		lines = append(lines, m.bar.ViewAs(m.progress.Percent()))
	}
	if m.notice != "" {
		lines = append(lines, styles.ok.Render(m.notice))
	}
	if m.err != nil {
		lines = append(lines, styles.err.Render("Error: "+m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStudio() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.tracks.View(), "  ", m.renderControls())
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
		m.renderHeader(), body, m.renderStatus(), m.help.FullHelpView(m.keys.FullHelp()))
}

func (m *Model) renderAddTrack() string {
	title := styles.title.Render("Add track")
	hint := styles.help.Render("Catalog: " + strings.Join(models.Instruments, ", "))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.input.View(), hint, helpView)
}

func (m *Model) renderLyrics() string {
	title := styles.title.Render("Lyrics")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.save, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.lyrics.View(), helpView)
}

func (m *Model) renderResults() string {
	if len(m.results.Items()) == 0 {
		return styles.warn.Render("No results yet. Generate something first.") + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}
	status := ""
	if m.err != nil {
		status = "\n" + styles.err.Render("Error: "+m.err.Error())
	} else if m.notice != "" {
		status = "\n" + styles.ok.Render(m.notice)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", m.results.View(), status, helpView)
}
