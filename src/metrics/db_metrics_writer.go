package metrics

import (
	"context"

	"pairbot/src/database"
	"pairbot/src/datamodels"
)

type DBResultWriter struct {
	db database.RunsDatabase
}

func NewDBResultWriter(db database.RunsDatabase) *DBResultWriter {
	return &DBResultWriter{
		db: db,
	}
}

func (w *DBResultWriter) Write(ctx context.Context, report *datamodels.BacktestReport) error {
	return w.db.WriteRun(ctx, report.Summary(), report.Periods())
}

func (w *DBResultWriter) Close() error {
	return nil
}
