package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roman-kulish/flythrough/cmd/flythrough/app"
	"github.com/roman-kulish/flythrough/internal/scenario"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to the scenario file")
	flag.Parse()

	if configPath == "" {
		logger.Error("no scenario file provided")
		os.Exit(1)
	}

	config, err := scenario.LoadConfig(configPath)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load scenario file: %s", err.Error()), slog.String("path", configPath))
		os.Exit(1)
	}

	logLevel.Set(config.LogLevel())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
