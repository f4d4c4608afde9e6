package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/docs-qa/internal/adapters/cli"
	"github.com/kirillkom/docs-qa/internal/bootstrap"
	"github.com/kirillkom/docs-qa/internal/config"
	"github.com/kirillkom/docs-qa/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// Keep structured logs out of interactive output unless asked for.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "error"
	}
	slog.SetDefault(logging.NewJSONLogger("docqa", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	err = cli.Execute(ctx, cli.Services{
		Ingestor: app.IngestUC,
		Answerer: app.AnswerUC,
		Repo:     app.Repo,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
