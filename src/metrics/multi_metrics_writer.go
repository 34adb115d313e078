package metrics

import (
	"context"
	"log/slog"
	"sync"

	"pairbot/src/datamodels"
)

// MultiResultWriter writes reports to multiple destinations
type MultiResultWriter struct {
	writers []ResultWriter
	mu      sync.RWMutex
}

func NewMultiResultWriter(writers ...ResultWriter) *MultiResultWriter {
	return &MultiResultWriter{
		writers: writers,
	}
}

func (w *MultiResultWriter) AddWriter(writer ResultWriter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writers = append(w.writers, writer)
}

func (w *MultiResultWriter) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.writers)
}

// Write hands the report to every writer and returns the last failure.
func (w *MultiResultWriter) Write(ctx context.Context, report *datamodels.BacktestReport) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	slog.Debug("MultiResultWriter writing report", "run", report.RunID, "writers", len(w.writers))

	var lastErr error
	for _, writer := range w.writers {
		if err := writer.Write(ctx, report); err != nil {
			lastErr = err
			slog.Error("Failed to write report",
				"writer", writer,
				"error", err)
		}
	}
	return lastErr
}

// Files lists the artifacts left by file-producing writers.
func (w *MultiResultWriter) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var files []string
	for _, writer := range w.writers {
		if artifacts, ok := writer.(ArtifactWriter); ok {
			files = append(files, artifacts.Files()...)
		}
	}
	return files
}

func (w *MultiResultWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var lastErr error
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil {
			lastErr = err
			slog.Error("Failed to close result writer",
				"writer", writer,
				"error", err)
		}
	}
	return lastErr
}
