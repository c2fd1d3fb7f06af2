package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/netellus-advisor/internal/bootstrap"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Connects to the configured backends and serves the advisor API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}

			// The server logs with the configured sink rather than the CLI's
			// console logger.
			logger, err := bootstrap.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)
			bootstrap.Version = Version

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			logger.Info("starting advisor API server",
				logging.String("version", Version),
				logging.Int("port", cfg.Server.Port))
			return app.Serve(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}
