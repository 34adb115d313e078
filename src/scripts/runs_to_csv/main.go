package main

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"time"

	"pairbot/src/backtest"
	"pairbot/src/config"
	"pairbot/src/database"
)

// Lists every stored run of the experiment described by a backtest config,
// newest first, so repeated runs of one config can be compared.

func main() {
	// verify that there are two command line args
	if len(os.Args) != 3 {
		slog.Error("Usage: runs_to_csv <config.yaml> <out.csv>")
		os.Exit(1)
	}
	configPath, outPath := os.Args[1], os.Args[2]

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database == nil {
		slog.Error("Config has no postgres section")
		os.Exit(1)
	}
	db, err := database.NewDBConnection(*cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	fingerprint, err := backtest.Fingerprint(cfg)
	if err != nil {
		slog.Error("Failed to fingerprint config", "error", err)
		os.Exit(1)
	}
	runs, err := db.GetRunsByFingerprint(context.Background(), fingerprint)
	if err != nil {
		slog.Error("Failed to get runs", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(outPath)
	if err != nil {
		slog.Error("Failed to create output file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"run_id", "commit", "started_at", "periods", "trades", "sharpe", "sharpe_net", "cum_return_net"})
	for _, run := range runs {
		_ = w.Write([]string{
			run.ID.String(),
			run.Commit,
			run.StartedAt.Format(time.RFC3339),
			strconv.Itoa(run.Periods),
			strconv.Itoa(run.Trades),
			strconv.FormatFloat(run.Sharpe, 'g', -1, 64),
			strconv.FormatFloat(run.SharpeNet, 'g', -1, 64),
			strconv.FormatFloat(run.CumReturnNet, 'g', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("Failed to write csv", "error", err)
		os.Exit(1)
	}
	slog.Info("Wrote runs", "fingerprint", fingerprint, "count", len(runs), "path", outPath)
}
