package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing files"`
	Dir   string `short:"d" name:"dir" help:"Directory for the new project; the config is written there as sitebuilder.yaml"`
	Bare  bool   `help:"Only write the configuration file, without the starter project"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Dir != "" {
		cfgPath = filepath.Join(i.Dir, "sitebuilder.yaml")
	}
	return RunInit(cfgPath, i.Force, !i.Bare)
}

// RunInit writes the example config to configPath and, with starter set, the
// starter project next to it.
func RunInit(configPath string, force, starter bool) error {
	// Provide friendly user-facing messages on stdout for CLI integration tests.
	fmt.Println("Initializing sitebuilder project")
	fmt.Printf("Writing configuration to %s\n", configPath)
	// Both the config and the starter files are checked before anything is written.
	if starter && !force {
		if err := scaffold.Check(filepath.Dir(configPath)); err != nil {
			fmt.Println("Initialization failed")
			return err
		}
	}
	if err := config.Init(configPath, force); err != nil {
		fmt.Println("Initialization failed")
		return err
	}

	if starter {
		written, err := scaffold.Write(filepath.Dir(configPath), force)
		if err != nil {
			fmt.Println("Initialization failed")
			return err
		}
		for _, path := range written {
			fmt.Printf("Wrote %s\n", path)
		}
	}
	fmt.Println("initialized successfully")
	return nil
}
