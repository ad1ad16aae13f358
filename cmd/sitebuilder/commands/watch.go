package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Every    time.Duration `help:"Also rebuild at this interval (e.g. 1h) so cache versions refresh"`
	Cron     string        `help:"Also rebuild on this five field cron expression"`
	Debounce time.Duration `help:"Quiet period before a change triggers a rebuild" default:"300ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if w.Every < 0 {
		return sberrors.ValidationFailed("every", "must not be negative")
	}

	ctx, cancel := signalContext()
	defer cancel()

	recorder := newRecorder(cfg)
	rebuild := func(ctx context.Context) error {
		current, err := loadConfig(root)
		if err != nil {
			return err
		}
		report, err := RunBuild(ctx, current, recorder)
		if err != nil {
			return err
		}
		fmt.Printf("Built to: %s\n", report.OutputDir)
		return nil
	}

	fmt.Println("Building site")
	if err := rebuild(ctx); err != nil {
		slog.Warn("Initial build failed, waiting for changes", logfields.Error(err))
	}

	rb := watch.NewRebuilder(rebuild, w.Debounce)

	if w.Every > 0 || w.Cron != "" {
		sched, err := newRebuildScheduler(w.Every, w.Cron, rb)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	return watch.NewWatcher(watchInputs(cfg), rb).Run(ctx)
}

// watchInputs lists the directories and config file that trigger rebuilds.
func watchInputs(cfg *config.Config) watch.Inputs {
	return watch.Inputs{
		Dirs:       []string{cfg.SourceDir(), cfg.TemplateDir()},
		ConfigFile: cfg.Path,
		IgnoreDir:  cfg.OutputDir(),
	}
}

// newRebuildScheduler registers the periodic rebuild jobs.
func newRebuildScheduler(every time.Duration, cron string, rb *watch.Rebuilder) (*watch.Scheduler, error) {
	sched, err := watch.NewScheduler()
	if err != nil {
		return nil, sberrors.InternalError("create scheduler", err)
	}
	if every > 0 {
		if _, err := sched.ScheduleEvery("periodic-rebuild", every, rb.Request); err != nil {
			_ = sched.Stop(context.Background())
			return nil, sberrors.ValidationFailed("every", err.Error())
		}
		slog.Info("Scheduled periodic rebuild", slog.Duration("every", every))
	}
	if cron != "" {
		if _, err := sched.ScheduleCron("cron-rebuild", cron, rb.Request); err != nil {
			_ = sched.Stop(context.Background())
			return nil, sberrors.ValidationFailed("cron", err.Error())
		}
		slog.Info("Scheduled cron rebuild", slog.String("cron", cron))
	}
	return sched, nil
}
