// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for config, database and backend headers.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "headers",
				Usage: "Store extra backend request headers taken from a browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for headers.json (default: ~/.songsmith/headers.json)",
					},
				},
				Action: r.SetupHeaders,
			},
		},
	}
}

// projectCommand manages the current session's project.
func projectCommand(r *Runner) *cli.Command {
	projectFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{Name: "tempo", Usage: "Tempo in BPM"},
			&cli.StringFlag{Name: "key", Usage: "Musical key, e.g. \"C minor\""},
			&cli.StringFlag{Name: "style", Usage: "Mood: Romantic, Sad, One-sided or free text"},
			&cli.IntFlag{Name: "duration", Usage: "Song duration in seconds"},
		}
	}

	return &cli.Command{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "Create, inspect and switch projects",
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "Start a new session and make it current",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     projectFlags(),
				Action:    r.ProjectNew,
			},
			{
				Name:   "show",
				Usage:  "Show the current session",
				Action: r.ProjectShow,
			},
			{
				Name:   "set",
				Usage:  "Change project fields",
				Flags:  append(projectFlags(), &cli.StringFlag{Name: "name", Usage: "Project name"}),
				Action: r.ProjectSet,
			},
			{
				Name:   "create",
				Usage:  "Create the project on the backend if it has no id yet",
				Action: r.ProjectCreate,
			},
			{
				Name:   "list",
				Usage:  "List saved sessions",
				Action: r.ProjectList,
			},
			{
				Name:      "use",
				Usage:     "Switch to a saved session by session or project id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ProjectUse,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved session",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ProjectDelete,
			},
		},
	}
}

// trackCommand edits instrument tracks. Tracks are referenced by position,
// id prefix or name.
func trackCommand(r *Runner) *cli.Command {
	ref := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "track"}}
	}

	return &cli.Command{
		Name:    "track",
		Aliases: []string{"t"},
		Usage:   "Edit instrument tracks",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an instrument track",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.TrackAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a track",
				Arguments: ref(),
				Action:    r.TrackRemove,
			},
			{
				Name:      "mute",
				Usage:     "Toggle mute",
				Arguments: ref(),
				Action:    r.TrackMute,
			},
			{
				Name:      "solo",
				Usage:     "Toggle solo",
				Arguments: ref(),
				Action:    r.TrackSolo,
			},
			{
				Name:  "set",
				Usage: "Set a control (volume, pan, reverb, attack, release, humanize)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "track"},
					&cli.StringArg{Name: "control"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.TrackSet,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tracks",
				Action:  r.TrackList,
			},
		},
	}
}

// lyricsCommand edits the project lyrics.
func lyricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lyrics",
		Usage: "Set or show lyrics",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Replace the lyrics",
				Arguments: []cli.Argument{&cli.StringArg{Name: "text"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read lyrics from a file"},
				},
				Action: r.LyricsSet,
			},
			{
				Name:  "show",
				Usage: "Show lyrics and their timing",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "lrc", Usage: "Print timed lyrics in LRC format"},
				},
				Action: r.LyricsShow,
			},
		},
	}
}

// generateCommand submits generation jobs and waits for them.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen", "g"},
		Usage:   "Run generation jobs on the backend",
		Commands: []*cli.Command{
			{
				Name:  "melody",
				Usage: "Generate a melody and lyric timing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "lyrics", Usage: "Lyrics to sing (default: project lyrics)"},
					&cli.StringFlag{Name: "lyrics-file", Usage: "Read lyrics from a file"},
				},
				Action: r.GenerateMelody,
			},
			{
				Name:   "instrumental",
				Usage:  "Render the instrument tracks",
				Action: r.GenerateInstrumental,
			},
			{
				Name:   "mix",
				Usage:  "Mix and master the recorded stems",
				Action: r.GenerateMix,
			},
			{
				Name:   "video",
				Usage:  "Generate a video for the latest master",
				Action: r.GenerateVideo,
			},
			{
				Name:   "full",
				Usage:  "Run the whole pipeline in one job",
				Action: r.GenerateFull,
			},
		},
	}
}

// voiceCommand selects voices and uploads voice clips.
func voiceCommand(r *Runner) *cli.Command {
	metaFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Display name of the voice"},
			&cli.StringFlag{Name: "locale", Usage: "bn, hi or en", Value: "en"},
			&cli.StringFlag{Name: "gender", Usage: "female or male", Value: "female"},
			&cli.BoolFlag{Name: "consent", Usage: "Confirm you have the right to use this voice"},
		}
	}

	return &cli.Command{
		Name:  "voice",
		Usage: "Voice presets and custom voice uploads",
		Commands: []*cli.Command{
			{
				Name:   "presets",
				Usage:  "List stock voices",
				Action: r.VoicePresets,
			},
			{
				Name:      "select",
				Usage:     "Use a preset or custom voice profile for this session",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.VoiceSelect,
			},
			{
				Name:   "check",
				Usage:  "Validate voice clips locally without uploading",
				Flags:  metaFlags(),
				Action: r.VoiceCheck,
			},
			{
				Name:   "upload",
				Usage:  "Validate and upload voice clips to create a voice profile",
				Flags:  metaFlags(),
				Action: r.VoiceUpload,
			},
		},
	}
}

// resultsCommand shows and opens result URLs.
func resultsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "Show or open generated results",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.ResultsShow,
		Commands: []*cli.Command{
			{
				Name:      "open",
				Usage:     "Open a result (e.g. master, video, midi) in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ResultsOpen,
			},
		},
	}
}

// exportCommand downloads results and writes project files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Download all results and write project.md, tracks.csv and lyrics.lrc",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: songsmith_export_{epoch})",
			},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent downloads (default: [export] workers)"},
		},
		Action: r.Export,
	}
}

// catalogCommand prints the stock instruments and styles.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "catalog",
		Usage:  "List stock instruments and styles",
		Action: r.Catalog,
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the studio backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive studio.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"studio", "ui"},
		Usage:   "Launch the interactive studio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/songsmith-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// mockCommand runs the in-memory backend.
func mockCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "mock",
		Usage: "Run an in-memory studio backend for demos and testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default: [server] host)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default: [server] port)"},
			&cli.FloatFlag{Name: "step", Usage: "Job progress per status poll, in percent", Value: 25},
			&cli.StringSliceFlag{Name: "fail", Usage: "Job kinds that should fail (melody, instrumental, mix, video, full)"},
			&cli.StringSliceFlag{Name: "require-header", Usage: "Reject requests without this header, as Name=Value"},
		},
		Action: r.Mock,
	}
}
