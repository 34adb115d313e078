package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pairbot/src/backtest"
	"pairbot/src/config"
	"pairbot/src/database"
	"pairbot/src/datamodels"
	"pairbot/src/utils/general"
	"pairbot/src/version"
)

func main() {
	initializeLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// config path from first arg, CONFIG_PATH otherwise
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	backtestConfig, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Ramping up Pairbot", "run", backtestConfig.Name, "build", version.Describe())
	slog.Debug("Build info", "info", version.GetBuildInfo())

	if err := run(ctx, backtestConfig); err != nil {
		slog.Error("Backtest failed", "error", err)
		os.Exit(1)
	}
	slog.Debug("System usage", "usage", general.GetSystemUsage())
}

func run(ctx context.Context, backtestConfig *datamodels.BacktestConfig) error {
	builder := backtest.NewRunner(backtestConfig)

	if backtestConfig.MetricsWriter != nil && backtestConfig.MetricsWriter.DBWriter {
		db, err := database.NewDBConnection(*backtestConfig.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}
		builder = builder.WithDatabase(db)
	}

	runner, err := builder.Build()
	if err != nil {
		return err
	}
	defer runner.Close()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("Wrote backtest artifacts", "run_id", report.RunID, "files", runner.Artifacts())
	return nil
}

func initializeLogging() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}
	switch strings.ToLower(logLevel) {
	case "debug":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})))
	case "warn":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelWarn})))
	default:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo})))
	}
}
