package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/repositories"
	"github.com/desertthunder/songsmith/internal/services"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Backend clients, the database and the studio engine are built on first use
// so commands like `setup config` work without either.
type Runner struct {
	config       *shared.Config
	configPath   string
	configLoaded bool
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer

	db       *sql.DB
	ownsDB   bool
	sessions *repositories.SessionRepository
	api      *services.APIService
	client   *services.StudioClient
	engine   *tasks.Studio
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // Skips loading --config when set
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // Opened from [shared.DatabaseConfig] when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{
		config:       opts.Config,
		configLoaded: opts.Config != nil,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
		db:           opts.DB,
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	return r
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "songsmith",
		Usage:   "Compose, render and export songs with a music-generation studio backend",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, projectCommand, trackCommand, lyricsCommand, generateCommand, voiceCommand,
		resultsCommand, exportCommand, catalogCommand, apiCommand, tuiCommand, mockCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config unless one was injected,
// applies environment overrides and validates the result.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if !r.configLoaded {
		if _, err := os.Stat(r.configPath); err == nil {
			cfg, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = cfg
			r.logger.Debug("config loaded", "path", r.configPath)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
		r.config.ApplyEnv()
		r.configLoaded = true
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database if the runner opened it.
func (r *Runner) Close() error {
	if r.db != nil && r.ownsDB {
		err := r.db.Close()
		r.db, r.sessions, r.ownsDB = nil, nil, false
		return err
	}
	return nil
}

// backend returns the studio client, building it from the [backend] section on first use.
func (r *Runner) backend() (*services.StudioClient, error) {
	if r.client != nil {
		return r.client, nil
	}

	headers, err := r.config.LoadHeaders()
	if err != nil {
		return nil, err
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.Timeout()}
	}

	r.api = services.NewAPIService(r.config.Backend.BaseURL, r.httpClient,
		services.WithHeaders(headers),
		services.WithRateLimit(r.config.Backend.RequestsPerSecond),
		services.WithLogger(shared.WithLogger(r.logger, "component", "api")),
	)
	r.client = services.NewStudioClient(r.api)
	r.logger.Debug("backend configured", "base_url", r.api.BaseURL(), "headers", len(headers))
	return r.client, nil
}

// store opens the session database on first use.
func (r *Runner) store() (*repositories.SessionRepository, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, err
		}
		r.db, r.ownsDB = db, true
	}
	r.sessions = repositories.NewSessionRepository(r.db)
	return r.sessions, nil
}

// newSession stores a fresh session built from the [project] defaults and makes it current.
func (r *Runner) newSession(name string) (*models.Session, error) {
	repo, err := r.store()
	if err != nil {
		return nil, err
	}

	project := session.NewProject(r.config.Project)
	if name != "" {
		project.Name = name
	}
	rec := models.NewSession(project)
	if err := repo.Create(rec); err != nil {
		return nil, err
	}
	if err := repo.SetCurrent(rec.ID()); err != nil {
		return nil, err
	}

	r.engine = nil
	r.logger.Debug("session created", "session", rec.ID(), "name", project.Name)
	return rec, nil
}

// studio returns the engine for the current session, creating a default
// session when none exists yet.
func (r *Runner) studio() (*tasks.Studio, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	repo, err := r.store()
	if err != nil {
		return nil, err
	}
	rec, err := repo.Current()
	if errors.Is(err, shared.ErrNoSession) {
		rec, err = r.newSession("")
	}
	if err != nil {
		return nil, err
	}

	client, err := r.backend()
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "session", rec.ID())
	sess := session.New(rec, client, session.OptionsFromConfig(r.config.Project), logger)
	poller := tasks.NewPoller(client, r.config.PollInterval(), r.config.Polling.MaxAttempts, logger)
	r.engine = tasks.NewStudio(client, sess, poller, tasks.SettingsFromConfig(r.config), logger)
	return r.engine, nil
}

// save persists the current session.
func (r *Runner) save() error {
	if r.engine == nil {
		return nil
	}
	return r.saveSession(r.engine.Session().Snapshot())
}

func (r *Runner) saveSession(s *models.Session) error {
	repo, err := r.store()
	if err != nil {
		return err
	}
	if err := repo.Update(s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// exportOpts builds download settings from the [export] section.
func (r *Runner) exportOpts(dir string) tasks.ExportOpts {
	return tasks.ExportOpts{
		OutputDir:  dir,
		NumWorkers: r.config.Export.Workers,
		RateLimit:  r.config.Export.RateLimit,
		BaseURL:    r.config.Backend.BaseURL,
		Client:     r.httpClient,
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
