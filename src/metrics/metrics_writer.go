package metrics

import (
	"context"
	"log/slog"

	"pairbot/src/database"
	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// ResultWriter persists a finished backtest report.
type ResultWriter interface {
	Write(ctx context.Context, report *datamodels.BacktestReport) error
	// Close cleans up any resources
	Close() error
}

// ArtifactWriter is a ResultWriter that leaves files behind.
type ArtifactWriter interface {
	ResultWriter
	Files() []string
}

// BuildResultWriter assembles the writers enabled in config. db may be nil
// when the database writer is off.
func BuildResultWriter(config *datamodels.MetricsWriterConfig, db database.RunsDatabase) (*MultiResultWriter, error) {
	if config == nil {
		slog.Warn("MetricsWriterConfig is nil, skipping result writers")
		return NewMultiResultWriter(), nil
	}
	writers := []ResultWriter{}
	if config.FileWriter {
		fileWriter, err := NewFileResultWriter(config.FilePath, FileFormat(config.Format))
		if err != nil {
			return nil, err
		}
		writers = append(writers, fileWriter)
	}
	if config.DBWriter {
		if db == nil {
			return nil, errors.Validationf("database writer enabled without a database connection")
		}
		writers = append(writers, NewDBResultWriter(db))
	}
	return NewMultiResultWriter(writers...), nil
}
