package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skyezerfox/magma/api"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/server"
)

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				log.Warn().Err(err).Msg("Shutdown was not clean")
			}
		}()

		if cfg.HTTP.Enabled {
			apiServer := api.NewServer(srv.Options(), srv.Cache(), cfg.Log.Level == "debug")
			go func() {
				if err := apiServer.Start(ctx, cfg.HTTP.Port); err != nil {
					log.Error().Err(err).Msg("API server stopped")
				}
			}()
		}

		log.Info().
			Str("addr", cfg.Listener.Addr()).
			Str("version", constants.MCVersion).
			Bool("online_mode", cfg.Server.OnlineMode).
			Msg("Starting server...")

		if err := srv.ListenAndServe(ctx); err != nil {
			return err
		}

		log.Info().Msg("Exiting")
		return nil
	},
}
