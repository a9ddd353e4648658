package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/EasterCompany/dex-interview-service/app"
	"github.com/EasterCompany/dex-interview-service/config"
	logger "github.com/EasterCompany/dex-interview-service/log"
	"github.com/spf13/pflag"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	fs := pflag.NewFlagSet("dex-interview-service", pflag.ExitOnError)
	config.Flags(fs)
	showVersion := fs.Bool("version", false, "print the version and exit")
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version)
		return
	}

	// 1. Load Configuration
	cfg, err := config.LoadFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error loading config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error initializing logger: %v\n", err)
		os.Exit(1)
	}

	// 3. Wait for shutdown signal in the background
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Wire services
	a, err := app.New(ctx, cfg, version)
	if err != nil {
		logger.Fatal("Failed to initialize interview service", err)
	}

	// 5. Serve until interrupted
	if err := a.Run(ctx); err != nil {
		logger.Fatal("Interview service stopped with an error", err)
	}
	l := logger.Logger()
	l.Info().Msg("interview service shut down")
}
