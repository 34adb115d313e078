package metrics

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairbot/src/datamodels"
	"pairbot/src/portfolio"
	"pairbot/src/utils/errors"
)

func testReport(t *testing.T) *datamodels.BacktestReport {
	t.Helper()
	index := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	px := datamodels.MustSeries("KO", index, []float64{60, 61, 60.5})
	py := datamodels.MustSeries("PEP", index, []float64{170, 171, 172})

	estimates := datamodels.NewRollingEstimates(20, px)
	copy(estimates.Betas.Values, []float64{0.3, 0.3, 0.31})
	copy(estimates.SpreadStds.Values, []float64{0, 1, 1})
	copy(estimates.CointPValues.Values, []float64{1, 0.04, 0.03})
	zscore := datamodels.WithValues(px, "zscore", []float64{math.NaN(), 2.4, 0.2})
	positions := datamodels.WithValues(px, "position", []datamodels.Position{0, -1, 0})

	result, err := portfolio.CalculateReturns(px, py, positions, estimates.Betas, 0.001,
		portfolio.WithAlphas(estimates.Alphas))
	require.NoError(t, err)

	return &datamodels.BacktestReport{
		RunID:             uuid.New(),
		Name:              "ko_pep",
		ConfigFingerprint: "fingerprint",
		StartedAt:         time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Signal:            datamodels.SignalConfig{EntryThreshold: 2, ExitThreshold: 0.5, StopZ: 3},
		TransactionCost:   0.001,
		PriceX:            px,
		PriceY:            py,
		Estimates:         estimates,
		ZScore:            zscore,
		Result:            result,
	}
}

func TestFileResultWriterCSV(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewFileResultWriter(dir, FormatCSV)
	require.NoError(t, err)

	report := testReport(t)
	require.NoError(t, writer.Write(context.Background(), report))
	require.NoError(t, writer.Close())

	periodsFile := filepath.Join(dir, "20240601_ko_pep_periods.csv")
	summaryFile := filepath.Join(dir, "20240601_ko_pep_summary.json")
	assert.Equal(t, []string{periodsFile, summaryFile}, writer.Files())

	f, err := os.Open(periodsFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	assert.Equal(t, "timestamp", header[0])
	assert.NotContains(t, header, "RunID")
	assert.NotContains(t, header, "Id")
	column := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, "2024-01-03T00:00:00Z", rows[2][column("timestamp")])
	assert.Equal(t, "", rows[1][column("zscore")])
	assert.Equal(t, "2.4", rows[2][column("zscore")])
	assert.Equal(t, "-1", rows[2][column("position")])
	assert.Equal(t, "0.04", rows[2][column("coint_pvalue")])

	var summary map[string]any
	content, err := os.ReadFile(summaryFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(content, &summary))
	assert.Equal(t, report.RunID.String(), summary["id"])
	assert.Equal(t, "KO", summary["symbol_x"])
	assert.Equal(t, float64(3), summary["periods"])
	assert.Equal(t, float64(2), summary["trades"])
}

func TestFileResultWriterJSONLines(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewFileResultWriter(dir, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, writer.Write(context.Background(), testReport(t)))

	f, err := os.Open(filepath.Join(dir, "20240601_ko_pep_periods.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var periods []datamodels.BacktestPeriod
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var period datamodels.BacktestPeriod
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &period))
		periods = append(periods, period)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, periods, 3)
	assert.Nil(t, periods[0].ZScore)
	assert.Equal(t, datamodels.Short, periods[1].Position)
	assert.True(t, strings.HasPrefix(periods[2].Timestamp.Format(time.RFC3339), "2024-01-04"))
}

func TestNewFileResultWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewFileResultWriter(t.TempDir(), FileFormat("parquet"))
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

type recordingWriter struct {
	reports []*datamodels.BacktestReport
	err     error
	closed  bool
}

func (w *recordingWriter) Write(_ context.Context, report *datamodels.BacktestReport) error {
	w.reports = append(w.reports, report)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestMultiResultWriter(t *testing.T) {
	failing := &recordingWriter{err: errors.New("disk full")}
	ok := &recordingWriter{}
	writer := NewMultiResultWriter(failing)
	writer.AddWriter(ok)

	report := testReport(t)
	err := writer.Write(context.Background(), report)
	assert.Error(t, err)
	assert.Len(t, ok.reports, 1)
	assert.Len(t, failing.reports, 1)

	require.NoError(t, writer.Close())
	assert.True(t, ok.closed)
	assert.True(t, failing.closed)
	assert.Empty(t, writer.Files())
}

func TestBuildResultWriter(t *testing.T) {
	writer, err := BuildResultWriter(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, writer.Len())

	writer, err = BuildResultWriter(&datamodels.MetricsWriterConfig{FileWriter: true, FilePath: t.TempDir(), Format: "json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, writer.Len())

	_, err = BuildResultWriter(&datamodels.MetricsWriterConfig{DBWriter: true}, nil)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
