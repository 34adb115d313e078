package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pairbot/src/config"
	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

type recordingUploader struct {
	objects map[string]string
}

func (u *recordingUploader) Upload(_ context.Context, localFile, objectPath string) error {
	if _, err := os.Stat(localFile); err != nil {
		return err
	}
	u.objects[objectPath] = localFile
	return nil
}

type RunnerTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	dir    string
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.dir = s.T().TempDir()
}

func (s *RunnerTestSuite) TearDownTest() {
	s.cancel()
}

// writePair writes a cointegrated pair: y is a random walk and
// x = 2 + 1.5*y + noise.
func (s *RunnerTestSuite) writePair(n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	var xb, yb strings.Builder
	xb.WriteString("timestamp,price\n")
	yb.WriteString("timestamp,price\n")
	y := 50.0
	for i := 0; i < n; i++ {
		y += rng.NormFloat64()
		x := 2 + 1.5*y + 0.5*rng.NormFloat64()
		ts := int64(i) * 86400
		fmt.Fprintf(&xb, "%d,%f\n", ts, x)
		fmt.Fprintf(&yb, "%d,%f\n", ts, y)
	}
	s.Require().NoError(os.MkdirAll(filepath.Join(s.dir, "data"), 0o755))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "data", "X.csv"), []byte(xb.String()), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "data", "Y.csv"), []byte(yb.String()), 0o644))
}

func (s *RunnerTestSuite) loadConfig(extra string) *datamodels.BacktestConfig {
	content := `
name: synthetic
pair:
  x: {file_path: data/X.csv, relation_name: X, has_header: true}
  y: {file_path: data/Y.csv, relation_name: Y, has_header: true}
estimator: {window: 60, workers: 2}
signal: {entry_threshold: 1.0, exit_threshold: 0.2}
costs: {transaction_cost: 0.0005}
metrics_writer: {file_writer: true, file_path: out, format: csv}
plot: {file_path: out/synthetic.png, width: 640, height: 480}
` + extra
	path := filepath.Join(s.dir, "backtest.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	cfg, err := config.Load(path)
	s.Require().NoError(err)
	return cfg
}

func (s *RunnerTestSuite) TestRunWritesArtifacts() {
	s.writePair(200, 7)
	cfg := s.loadConfig("storage: {bucket: results, prefix: runs}\n")
	uploader := &recordingUploader{objects: map[string]string{}}
	startedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	runner, err := NewRunner(cfg).
		WithUploader(uploader).
		WithClock(func() time.Time { return startedAt }).
		Build()
	s.Require().NoError(err)
	defer runner.Close()

	report, err := runner.Run(s.ctx)
	s.Require().NoError(err)

	s.Equal(140, report.Result.Len())
	s.Equal(140, report.Estimates.Len())
	s.Equal(time.Unix(60*86400, 0).UTC(), report.PriceX.Index[0])
	s.Equal(startedAt, report.StartedAt)
	s.Greater(report.Result.TradeCount(), 0)
	s.InDelta(1.5, report.Estimates.Betas.Values[0], 0.5)

	artifacts := runner.Artifacts()
	s.Len(artifacts, 3)
	for _, file := range artifacts {
		s.FileExists(file)
		s.Contains(uploader.objects, "runs/"+filepath.Base(file))
	}
	s.FileExists(filepath.Join(s.dir, "out", "20240301_synthetic_periods.csv"))
	s.FileExists(filepath.Join(s.dir, "out", "synthetic.png"))
}

func (s *RunnerTestSuite) TestRunWithoutStorageSkipsUpload() {
	s.writePair(120, 3)
	cfg := s.loadConfig("")

	runner, err := NewRunner(cfg).Build()
	s.Require().NoError(err)
	s.Nil(runner.uploader)

	_, err = runner.Run(s.ctx)
	s.Require().NoError(err)
}

func (s *RunnerTestSuite) TestRunRejectsMisalignedPair() {
	s.writePair(120, 3)
	short := "timestamp,price\n0,50\n86400,51\n"
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "data", "Y.csv"), []byte(short), 0o644))
	cfg := s.loadConfig("")

	runner, err := NewRunner(cfg).Build()
	s.Require().NoError(err)
	_, err = runner.Run(s.ctx)
	s.True(errors.Is(err, errors.ErrMisaligned))
}

func (s *RunnerTestSuite) TestRunRejectsWindowPastSeries() {
	s.writePair(40, 3)
	cfg := s.loadConfig("")

	runner, err := NewRunner(cfg).Build()
	s.Require().NoError(err)
	_, err = runner.Run(s.ctx)
	s.True(errors.Is(err, errors.ErrValidation))
}

func (s *RunnerTestSuite) TestBuildRejectsInvalidConfig() {
	_, err := NewRunner(nil).Build()
	s.True(errors.Is(err, errors.ErrValidation))

	cfg := &datamodels.BacktestConfig{Name: "bad"}
	_, err = NewRunner(cfg).Build()
	s.True(errors.Is(err, errors.ErrValidation))
}

func (s *RunnerTestSuite) TestFingerprintIgnoresOutputSettings() {
	s.writePair(10, 1)
	cfg := s.loadConfig("")
	first, err := Fingerprint(cfg)
	s.Require().NoError(err)

	cfg.MetricsWriter.Format = "json"
	cfg.Estimator.Workers = 8
	second, err := Fingerprint(cfg)
	s.Require().NoError(err)
	s.Equal(first, second)

	cfg.Signal.EntryThreshold = 1.5
	third, err := Fingerprint(cfg)
	s.Require().NoError(err)
	s.NotEqual(first, third)
}
