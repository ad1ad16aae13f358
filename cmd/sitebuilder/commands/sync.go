package commands

import (
	"fmt"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/syncer"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Delay   float64 `short:"d" help:"Seconds during which repeated changes to the same file are ignored" default:"1.0"`
	Retries int     `help:"Retries for a copy that fails, with exponential backoff" default:"3"`
}

func (s *SyncCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Delay < 0 {
		return sberrors.ValidationFailed("delay", "must not be negative")
	}
	if s.Retries < 0 {
		return sberrors.ValidationFailed("retries", "must not be negative")
	}

	policy := retry.NewPolicy(retry.BackoffExponential, 50*time.Millisecond, time.Second, s.Retries)
	sy, err := syncer.New(cfg.OutputDir(), cfg.SourceDir(), time.Duration(s.Delay*float64(time.Second)),
		syncer.WithRetry(policy, nil))
	if err != nil {
		return err
	}
	if err := sy.CheckDirs(); err != nil {
		return notBuilt(err, cfg.OutputDir())
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("Syncing changes from %s to %s, press CTRL+C to stop\n", cfg.OutputDir(), cfg.SourceDir())
	if err := sy.Run(ctx); err != nil {
		return notBuilt(err, cfg.OutputDir())
	}
	fmt.Println("Sync stopped")
	return nil
}
