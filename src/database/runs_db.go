package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

const periodBatchSize = 5000

type RunsDatabase interface {
	Migrate() error
	WriteRun(ctx context.Context, run datamodels.BacktestRun, periods []datamodels.BacktestPeriod) error
	GetRun(ctx context.Context, id uuid.UUID) (datamodels.BacktestRun, error)
	GetPeriods(ctx context.Context, runID uuid.UUID) ([]datamodels.BacktestPeriod, error)
	GetRunsByFingerprint(ctx context.Context, fingerprint string) ([]datamodels.BacktestRun, error)
}

// WriteRun stores the summary and every period row in one transaction.
// Each period's RunID is set to the run's ID.
func (d *databaseImplementation) WriteRun(
	ctx context.Context,
	run datamodels.BacktestRun,
	periods []datamodels.BacktestPeriod) error {

	return d.gormDb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return errors.Wrapf(err, "failed to write run %s", run.ID)
		}
		if len(periods) == 0 {
			return nil
		}
		for i := range periods {
			periods[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(periods, periodBatchSize).Error; err != nil {
			return errors.Wrapf(err, "failed to write %d periods for run %s", len(periods), run.ID)
		}
		return nil
	})
}

func (d *databaseImplementation) GetRun(ctx context.Context, id uuid.UUID) (datamodels.BacktestRun, error) {
	var run datamodels.BacktestRun
	if err := d.gormDb.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return datamodels.BacktestRun{}, errors.Wrapf(err, "failed to get run %s", id)
	}
	return run, nil
}

func (d *databaseImplementation) GetPeriods(ctx context.Context, runID uuid.UUID) ([]datamodels.BacktestPeriod, error) {
	var periods []datamodels.BacktestPeriod
	query := d.gormDb.WithContext(ctx).
		Model(&datamodels.BacktestPeriod{}).
		Where("run_id = ?", runID).
		Order("timestamp")
	if err := query.Find(&periods).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get periods for run %s", runID)
	}
	return periods, nil
}

// GetRunsByFingerprint lists earlier runs of the same config, newest first.
func (d *databaseImplementation) GetRunsByFingerprint(ctx context.Context, fingerprint string) ([]datamodels.BacktestRun, error) {
	var runs []datamodels.BacktestRun
	query := d.gormDb.WithContext(ctx).
		Where("config_fingerprint = ?", fingerprint).
		Order("started_at DESC")
	if err := query.Find(&runs).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get runs for fingerprint %s", fingerprint)
	}
	return runs, nil
}
