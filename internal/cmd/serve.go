package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh-labs/agora/internal/coordination"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP coordination server",
	Long: `Starts the HTTP embedding surface: agents register over the API as
scripted responders, and tasks are created, distributed, and coordinated
through it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer logger.Close()

		coordinator := coordination.New(
			coordination.WithLogger(logger),
			coordination.WithConfig(cfg.Engine),
		)

		srv := server.New(coordinator, cfg.Server.Addr, server.WithLogger(logger))
		defer srv.Close()
		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
