package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skyezerfox/magma/config"
)

// The directory holding magma.yaml and .env.local
var configDir string

var RootCmd = &cobra.Command{
	Use:          "magma",
	Short:        "A Minecraft 1.16.3 protocol server",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", ".", "Directory holding magma.yaml")

	RootCmd.AddCommand(StartCmd)
	RootCmd.AddCommand(ProfilesCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}
