package backtest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pairbot/src/database"
	"pairbot/src/datamodels"
	"pairbot/src/estimator"
	"pairbot/src/feeds"
	"pairbot/src/metrics"
	"pairbot/src/portfolio"
	"pairbot/src/strategies"
	"pairbot/src/utils/errors"
	"pairbot/src/utils/general"
	"pairbot/src/version"
)

// Uploader copies a finished artifact to object storage.
type Uploader interface {
	Upload(ctx context.Context, localFile, objectPath string) error
}

type bucketUploader struct {
	bucket string
}

func (u *bucketUploader) Upload(ctx context.Context, localFile, objectPath string) error {
	return general.CopyFileToBucket(ctx, localFile, u.bucket, objectPath)
}

// Runner executes one pair backtest from config to written artifacts.
type Runner struct {
	config    *datamodels.BacktestConfig
	xFeed     feeds.PriceFeed
	yFeed     feeds.PriceFeed
	estimator *estimator.RollingEstimator
	writer    *metrics.MultiResultWriter
	plotter   *metrics.ReportPlotter
	uploader  Uploader
	now       func() time.Time
}

type RunnerBuilder struct {
	config    *datamodels.BacktestConfig
	db        database.RunsDatabase
	estimator *estimator.RollingEstimator
	uploader  Uploader
	now       func() time.Time
}

func NewRunner(config *datamodels.BacktestConfig) *RunnerBuilder {
	return &RunnerBuilder{config: config, now: time.Now}
}

// WithDatabase supplies the connection used by the database result writer.
func (b *RunnerBuilder) WithDatabase(db database.RunsDatabase) *RunnerBuilder {
	b.db = db
	return b
}

// WithEstimator overrides the estimator built from the estimator config.
func (b *RunnerBuilder) WithEstimator(e *estimator.RollingEstimator) *RunnerBuilder {
	b.estimator = e
	return b
}

// WithUploader overrides the bucket uploader built from the storage config.
func (b *RunnerBuilder) WithUploader(uploader Uploader) *RunnerBuilder {
	b.uploader = uploader
	return b
}

func (b *RunnerBuilder) WithClock(now func() time.Time) *RunnerBuilder {
	b.now = now
	return b
}

func (b *RunnerBuilder) Build() (*Runner, error) {
	if b.config == nil {
		return nil, errors.Validationf("backtest config is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	xFeed, err := feeds.NewPriceFeedFromConfig(b.config.Pair.X)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build x feed")
	}
	yFeed, err := feeds.NewPriceFeedFromConfig(b.config.Pair.Y)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build y feed")
	}

	rollingEstimator := b.estimator
	if rollingEstimator == nil {
		rollingEstimator, err = estimator.NewRollingEstimator().
			WithWorkers(b.config.Estimator.Workers).
			Build()
		if err != nil {
			return nil, err
		}
	}

	writer, err := metrics.BuildResultWriter(b.config.MetricsWriter, b.db)
	if err != nil {
		return nil, err
	}

	var plotter *metrics.ReportPlotter
	if b.config.Plot != nil {
		plotter = metrics.NewReportPlotterFromConfig(b.config.Plot)
	}

	uploader := b.uploader
	if uploader == nil && b.config.Storage != nil && b.config.Storage.Bucket != "" {
		uploader = &bucketUploader{bucket: b.config.Storage.Bucket}
	}

	return &Runner{
		config:    b.config,
		xFeed:     xFeed,
		yFeed:     yFeed,
		estimator: rollingEstimator,
		writer:    writer,
		plotter:   plotter,
		uploader:  uploader,
		now:       b.now,
	}, nil
}

// Run loads the pair, runs every stage and writes the report.
func (r *Runner) Run(ctx context.Context) (*datamodels.BacktestReport, error) {
	startedAt := r.now().UTC()
	window := r.config.Estimator.Window

	px, py, err := feeds.LoadAlignedPair(ctx, r.xFeed, r.yFeed)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded price pair", "x", px.Name, "y", py.Name, "points", px.Len())

	estimates, err := r.estimator.FitRollingParams(px, py, window)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fit rolling params")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	px, py = px.From(window), py.From(window)
	zscore, err := strategies.SpreadZScore(px, py, estimates)
	if err != nil {
		return nil, err
	}
	positions, err := strategies.GeneratePositions(zscore, strategies.ThresholdsFromConfig(r.config.Signal))
	if err != nil {
		return nil, err
	}
	result, err := portfolio.CalculateReturns(px, py, positions, estimates.Betas,
		r.config.Costs.TransactionCost, portfolio.WithAlphas(estimates.Alphas))
	if err != nil {
		return nil, err
	}

	fingerprint, err := Fingerprint(r.config)
	if err != nil {
		return nil, err
	}
	report := &datamodels.BacktestReport{
		RunID:             uuid.New(),
		Name:              r.config.Name,
		ConfigFingerprint: fingerprint,
		Commit:            version.RunCommit(),
		StartedAt:         startedAt,
		Signal:            r.config.Signal,
		TransactionCost:   r.config.Costs.TransactionCost,
		PriceX:            px,
		PriceY:            py,
		Estimates:         estimates,
		ZScore:            zscore,
		Result:            result,
	}

	summary := report.Summary()
	slog.Info("Backtest finished",
		"run_id", report.RunID,
		"periods", summary.Periods,
		"trades", summary.Trades,
		"sharpe", summary.Sharpe,
		"sharpe_net", summary.SharpeNet,
		"cum_return_net", summary.CumReturnNet)

	if err := r.writer.Write(ctx, report); err != nil {
		return report, errors.Wrap(err, "failed to write results")
	}
	if r.plotter != nil {
		if err := r.plotter.Plot(report); err != nil {
			return report, errors.Wrap(err, "failed to plot results")
		}
	}
	if err := r.upload(ctx); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) Artifacts() []string {
	files := r.writer.Files()
	if r.plotter != nil {
		files = append(files, r.plotter.Filename())
	}
	return files
}

func (r *Runner) upload(ctx context.Context) error {
	if r.uploader == nil {
		return nil
	}
	prefix := ""
	if r.config.Storage != nil {
		prefix = r.config.Storage.Prefix
	}
	for _, file := range r.Artifacts() {
		if err := r.uploader.Upload(ctx, file, general.ObjectPath(prefix, file)); err != nil {
			return errors.Wrapf(err, "failed to upload %s", file)
		}
	}
	return nil
}

func (r *Runner) Close() error {
	return r.writer.Close()
}

type fingerprintFields struct {
	X      datamodels.CsvFeedConfig
	Y      datamodels.CsvFeedConfig
	Window int
	Signal datamodels.SignalConfig
	Costs  datamodels.CostConfig
}

// Fingerprint identifies the experiment: the inputs, window, thresholds and
// costs. Output and connection settings do not change it.
func Fingerprint(config *datamodels.BacktestConfig) (string, error) {
	payload, err := json.Marshal(fingerprintFields{
		X:      config.Pair.X,
		Y:      config.Pair.Y,
		Window: config.Estimator.Window,
		Signal: config.Signal,
		Costs:  config.Costs,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode config fingerprint")
	}
	return general.GenerateUUID5StringFromByteArray(payload), nil
}
