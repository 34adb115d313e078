package feeds

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// CsvFeed reads a timestamp column and a price column from a CSV file.
type CsvFeed struct {
	filePath        string
	name            string
	hasHeader       bool
	timestampColumn int
	priceColumn     int
	timestampFormat string
	startTime       time.Time
	endTime         time.Time
}

type CsvFeedBuilder struct {
	filePath        string
	name            string
	hasHeader       bool
	timestampColumn int
	priceColumn     int
	timestampFormat string
	startTime       *time.Time
	endTime         *time.Time
}

func NewCsvFeedBuilder(filePath string) *CsvFeedBuilder {
	return &CsvFeedBuilder{
		filePath:        filePath,
		timestampColumn: 0,
		priceColumn:     1,
		timestampFormat: datamodels.TimestampFormatUnix,
	}
}

// WithName sets the series name. It defaults to the file name without extension.
func (b *CsvFeedBuilder) WithName(name string) *CsvFeedBuilder {
	b.name = name
	return b
}

func (b *CsvFeedBuilder) WithHasHeader(hasHeader bool) *CsvFeedBuilder {
	b.hasHeader = hasHeader
	return b
}

func (b *CsvFeedBuilder) WithColumns(timestampColumn, priceColumn int) *CsvFeedBuilder {
	b.timestampColumn = timestampColumn
	b.priceColumn = priceColumn
	return b
}

// WithTimestampFormat takes "unix" or a Go time layout.
func (b *CsvFeedBuilder) WithTimestampFormat(format string) *CsvFeedBuilder {
	b.timestampFormat = format
	return b
}

// WithStartTime drops rows before start.
func (b *CsvFeedBuilder) WithStartTime(start time.Time) *CsvFeedBuilder {
	b.startTime = &start
	return b
}

// WithEndTime drops rows after end.
func (b *CsvFeedBuilder) WithEndTime(end time.Time) *CsvFeedBuilder {
	b.endTime = &end
	return b
}

func (b *CsvFeedBuilder) Build() (*CsvFeed, error) {
	if b.filePath == "" {
		return nil, errors.Validationf("csv feed needs a file path")
	}
	if b.timestampColumn < 0 || b.priceColumn < 0 || b.timestampColumn == b.priceColumn {
		return nil, errors.Validationf("invalid columns: timestamp %d, price %d", b.timestampColumn, b.priceColumn)
	}
	feed := &CsvFeed{
		filePath:        b.filePath,
		name:            b.name,
		hasHeader:       b.hasHeader,
		timestampColumn: b.timestampColumn,
		priceColumn:     b.priceColumn,
		timestampFormat: b.timestampFormat,
	}
	if feed.timestampFormat == "" {
		feed.timestampFormat = datamodels.TimestampFormatUnix
	}
	if feed.name == "" {
		base := filepath.Base(b.filePath)
		feed.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if b.startTime != nil {
		feed.startTime = *b.startTime
	}
	if b.endTime != nil {
		feed.endTime = *b.endTime
		if b.startTime != nil && feed.endTime.Before(feed.startTime) {
			return nil, errors.Validationf("end time %s is before start time %s",
				feed.endTime.Format(time.RFC3339), feed.startTime.Format(time.RFC3339))
		}
	}
	return feed, nil
}

func (c *CsvFeed) GetName() string {
	return c.name
}

// Load reads the whole file into a series. Timestamps must be strictly
// increasing after the start and end filters are applied.
func (c *CsvFeed) Load(ctx context.Context) (datamodels.TimeSeries, error) {
	file, err := os.Open(c.filePath)
	if err != nil {
		return datamodels.TimeSeries{}, errors.Wrapf(err, "failed to open CSV file at %s", c.filePath)
	}
	defer file.Close()

	slog.Info("Loading CSV price feed", "feed", c.name, "filePath", c.filePath)

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		index  []time.Time
		prices []float64
		line   int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return datamodels.TimeSeries{}, errors.Wrapf(err, "failed to read %s", c.filePath)
		}
		line++
		if c.hasHeader && line == 1 {
			continue
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return datamodels.TimeSeries{}, errors.Wrap(err, "load cancelled")
			}
		}

		timestamp, price, err := c.parseRecord(record)
		if err != nil {
			return datamodels.TimeSeries{}, errors.Validationf("%s line %d: %v", c.filePath, line, err)
		}
		if !c.startTime.IsZero() && timestamp.Before(c.startTime) {
			continue
		}
		if !c.endTime.IsZero() && timestamp.After(c.endTime) {
			continue
		}
		index = append(index, timestamp)
		prices = append(prices, price)
	}

	series, err := datamodels.NewSeries(c.name, index, prices)
	if err != nil {
		return datamodels.TimeSeries{}, errors.Wrapf(err, "in %s", c.filePath)
	}
	slog.Debug("Loaded CSV price feed", "feed", c.name, "rows", series.Len())
	return series, nil
}

func (c *CsvFeed) parseRecord(record []string) (time.Time, float64, error) {
	if len(record) <= c.timestampColumn || len(record) <= c.priceColumn {
		return time.Time{}, 0, errors.Newf("record has %d fields", len(record))
	}
	timestamp, err := parseTimestamp(record[c.timestampColumn], c.timestampFormat)
	if err != nil {
		return time.Time{}, 0, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(record[c.priceColumn]), 64)
	if err != nil {
		return time.Time{}, 0, errors.Wrap(err, "failed to parse price")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return time.Time{}, 0, errors.Newf("price %v is not finite", price)
	}
	return timestamp, price, nil
}

func parseTimestamp(value, format string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if format == "" || format == datamodels.TimestampFormatUnix {
		seconds, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "failed to parse unix timestamp")
		}
		return time.Unix(seconds, 0).UTC(), nil
	}
	timestamp, err := time.Parse(format, value)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to parse timestamp")
	}
	return timestamp.UTC(), nil
}
