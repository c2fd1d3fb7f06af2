// Command apiserver serves the recommendation and lead API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/netellus-advisor/internal/bootstrap"
	"github.com/turtacn/netellus-advisor/internal/config"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadFromFileOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	bootstrap.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", logging.Err(err))
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("starting netellus advisor api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)
	if err := app.Serve(ctx); err != nil {
		logger.Error("server stopped with error", logging.Err(err))
		app.Close()
		os.Exit(1)
	}
	logger.Info("api server stopped")
}
