package feeds

import (
	"context"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// PriceFeed loads one price series.
type PriceFeed interface {
	GetName() string
	Load(ctx context.Context) (datamodels.TimeSeries, error)
}

// NewPriceFeedFromConfig builds the CSV feed described by one leg of the pair config.
func NewPriceFeedFromConfig(config datamodels.CsvFeedConfig) (PriceFeed, error) {
	builder := NewCsvFeedBuilder(config.FilePath).
		WithName(config.RelationName).
		WithHasHeader(config.HasHeader).
		WithColumns(config.TimestampColumn, config.PriceColumn).
		WithTimestampFormat(config.TimestampFormat)

	if config.StartTime != "" {
		start, err := parseTimestamp(config.StartTime, config.TimestampFormat)
		if err != nil {
			return nil, errors.Validationf("start_time %q: %v", config.StartTime, err)
		}
		builder = builder.WithStartTime(start)
	}
	if config.EndTime != "" {
		end, err := parseTimestamp(config.EndTime, config.TimestampFormat)
		if err != nil {
			return nil, errors.Validationf("end_time %q: %v", config.EndTime, err)
		}
		builder = builder.WithEndTime(end)
	}
	feed, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// LoadAlignedPair loads both legs and fails unless they share one index.
func LoadAlignedPair(ctx context.Context, x, y PriceFeed) (datamodels.TimeSeries, datamodels.TimeSeries, error) {
	px, err := x.Load(ctx)
	if err != nil {
		return datamodels.TimeSeries{}, datamodels.TimeSeries{}, errors.Wrapf(err, "failed to load %s", x.GetName())
	}
	py, err := y.Load(ctx)
	if err != nil {
		return datamodels.TimeSeries{}, datamodels.TimeSeries{}, errors.Wrapf(err, "failed to load %s", y.GetName())
	}
	if err := datamodels.CheckAligned(px, py); err != nil {
		return datamodels.TimeSeries{}, datamodels.TimeSeries{}, err
	}
	return px, py, nil
}
