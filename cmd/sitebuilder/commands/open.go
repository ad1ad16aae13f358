package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/browser"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/syncer"
)

// OpenCmd implements the 'open' command.
type OpenCmd struct{}

func (o *OpenCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	path, err := browser.IndexPath(cfg.OutputDir())
	if err != nil {
		return notBuilt(err, cfg.OutputDir())
	}
	fmt.Printf("Opening %s\n", path)
	if err := browser.OpenIndex(cfg.OutputDir(), g.Open); err != nil {
		return sberrors.WrapError(err, sberrors.CategoryRuntime, "failed to open browser").
			WithContext(logfields.KeyPath, path)
	}
	return nil
}

// notBuilt converts a missing-output error into a usage error pointing at the build command.
func notBuilt(err error, outputDir string) error {
	if errors.Is(err, browser.ErrNotBuilt) || errors.Is(err, syncer.ErrNotBuilt) {
		fmt.Println("The static site has not been built yet. Run `sitebuilder build` first.")
		return sberrors.Wrap(err, sberrors.CategoryValidation, sberrors.SeverityError, "site not built").
			WithContext(logfields.KeyOutput, outputDir)
	}
	return err
}
