package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/storefront/internal/cli"
	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(2)
	}
	log := logger.NewWithOptions("storectl", logger.Options{Level: cfg.LogLevel, Format: "text"}, os.Stderr)

	root := cli.NewRootCommand(cfg, func(c cli.Config) cli.API {
		return client.NewDefault(client.Config{BaseURL: c.APIURL, Token: c.Token, Timeout: c.Timeout}, nil, log)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, root, os.Stderr); err != nil {
		cancel()
		os.Exit(1)
	}
}
