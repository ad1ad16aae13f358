package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/browser"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Open bool `short:"o" help:"Open the built index page in the default web browser"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Provide friendly user-facing messages on stdout for CLI integration tests.
	fmt.Println("Building site")
	report, err := RunBuild(ctx, cfg, newRecorder(cfg))
	if err != nil {
		fmt.Println("Build failed")
		return err
	}
	fmt.Printf("Built to: %s\n", report.OutputDir)
	if len(report.BrokenLinks) > 0 {
		fmt.Printf("Found %d broken link(s)\n", len(report.BrokenLinks))
	}

	if b.Open {
		return browser.OpenIndex(report.OutputDir, g.Open)
	}
	return nil
}

// RunBuild runs one build of cfg and exports metrics when a textfile is configured.
func RunBuild(ctx context.Context, cfg *config.Config, recorder *metrics.PrometheusRecorder) (*site.Report, error) {
	opts := site.Options{}
	if recorder != nil {
		opts.Recorder = recorder
	}
	report, err := site.New(cfg, opts).Build(ctx)
	if recorder != nil && cfg.Metrics.Textfile != "" {
		path := cfg.Resolve(cfg.Metrics.Textfile)
		if werr := recorder.WriteTextfile(path); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(werr))
		} else {
			slog.Debug("Wrote metrics textfile", logfields.Path(path))
		}
	}
	return report, err
}

// newRecorder returns a Prometheus recorder when cfg exports metrics, else nil.
func newRecorder(cfg *config.Config) *metrics.PrometheusRecorder {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	return metrics.NewPrometheusRecorder(nil)
}
