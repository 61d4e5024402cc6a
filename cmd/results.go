package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/formatter"
	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
	"github.com/desertthunder/songsmith/internal/tasks"
)

// ResultsShow prints the result bundle, stems and thumbnails.
func (r *Runner) ResultsShow(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}
	sess := studio.Session()

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			ProjectID  string              `json:"projectId,omitempty"`
			Results    models.ResultBundle `json:"results"`
			Stems      models.Stems        `json:"stems,omitempty"`
			Thumbnails []string            `json:"thumbnails,omitempty"`
		}{sess.ProjectID(), sess.Results(), sess.Stems(), sess.Thumbnails()}, true)
	}

	r.writeBytes(formatter.ResultsToText(sess.Results()))
	if stems := sess.Stems(); len(stems) > 0 {
		r.writePlain("Stems: %d\n", len(stems))
		for _, s := range stems {
			r.writePlain("  %-14s %s\n", s.Name, s.URL)
		}
	}
	if thumbs := sess.Thumbnails(); len(thumbs) > 0 {
		r.writePlain("Thumbnails: %d\n", len(thumbs))
		for _, u := range thumbs {
			r.writePlain("  %s\n", u)
		}
	}
	return nil
}

// ResultsOpen opens a result in the default browser. "master" and "masterUrl" both work.
func (r *Runner) ResultsOpen(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: result name (e.g. master, video, midi)", shared.ErrMissingArgument)
	}

	studio, err := r.studio()
	if err != nil {
		return err
	}
	bundle := studio.Session().Results()

	raw, ok := lookupResult(bundle, name)
	if !ok {
		return fmt.Errorf("%w: no result %q (have: %s)", shared.ErrInvalidArgument, name, strings.Join(bundle.Keys(), ", "))
	}
	target := absoluteURL(r.config.Backend.BaseURL, raw)

	r.logger.Info("opening result", "name", name, "url", target)
	if err := shared.OpenURL(target); err != nil {
		return err
	}
	r.writePlain("Opened %s\n", target)
	return nil
}

func lookupResult(bundle models.ResultBundle, name string) (string, bool) {
	for _, k := range []string{name, name + "Url"} {
		for key, v := range bundle {
			if strings.EqualFold(key, k) && v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// absoluteURL prefixes root-relative result URLs with the backend base URL.
func absoluteURL(base, raw string) string {
	if strings.HasPrefix(raw, "/") {
		return strings.TrimRight(base, "/") + raw
	}
	return raw
}

// Export downloads every result and writes the project files.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	studio, err := r.studio()
	if err != nil {
		return err
	}

	opts := r.exportOpts(cmd.String("output"))
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := studio.Export(ctx, progressCh, opts)
	close(progressCh)
	<-printed
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Downloaded: %d/%d\n", result.Succeeded, result.Succeeded+result.Failed)
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}
	if result.Failed > 0 {
		r.writePlain("\nFailed downloads:\n")
		for _, d := range result.Downloads {
			if !d.Success {
				r.writePlain("  %s: %s\n", d.Name, d.Error)
			}
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}

// Catalog prints the stock instruments and styles.
func (r *Runner) Catalog(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("Instruments:\n")
	for _, name := range models.Instruments {
		r.writePlain("  %s\n", name)
	}
	r.writePlain("\nStyles:\n")
	for _, name := range models.Styles {
		r.writePlain("  %s\n", name)
	}
	return nil
}
