package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// cfg is the configuration loaded before every subcommand.
	cfg config.Config
	// st is the store opened before every subcommand.
	st *store.Store

	dataDir string
)

var rootCmd = &cobra.Command{
	Use:           "mudra",
	Short:         "Hand gesture control for the desktop",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				log.Printf("Error closing store: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.mudra)")
}

// setup opens the store and layers the configuration. The data dir comes from
// the flag or the environment only, since the settings live inside it.
func setup() error {
	boot := config.DefaultConfig()
	if err := boot.ApplyEnv(); err != nil {
		return err
	}
	if dataDir != "" {
		boot.SetDataDir(dataDir)
	}
	if err := boot.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var err error
	st, err = store.New(boot.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	cfg, err = config.Load(st.Settings())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.SetDataDir(boot.DataDir)
	return cfg.EnsureDirs()
}
