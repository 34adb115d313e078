package estimator

import (
	"log/slog"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// RollingEstimator fits the hedge relationship px = alpha + beta*py over a
// trailing window at every timestamp past the first window.
type RollingEstimator struct {
	regressor Regressor
	tester    CointegrationTester
	workers   int
}

type RollingEstimatorBuilder struct {
	regressor Regressor
	tester    CointegrationTester
	workers   int
}

func NewRollingEstimator() *RollingEstimatorBuilder {
	return &RollingEstimatorBuilder{workers: 1}
}

func (b *RollingEstimatorBuilder) WithRegressor(regressor Regressor) *RollingEstimatorBuilder {
	b.regressor = regressor
	return b
}

func (b *RollingEstimatorBuilder) WithCointegrationTester(tester CointegrationTester) *RollingEstimatorBuilder {
	b.tester = tester
	return b
}

// WithWorkers sets how many windows are fitted concurrently.
func (b *RollingEstimatorBuilder) WithWorkers(workers int) *RollingEstimatorBuilder {
	b.workers = workers
	return b
}

func (b *RollingEstimatorBuilder) Build() (*RollingEstimator, error) {
	if b.workers < 1 {
		return nil, errors.Validationf("workers must be at least 1, got %d", b.workers)
	}
	estimator := &RollingEstimator{
		regressor: b.regressor,
		tester:    b.tester,
		workers:   b.workers,
	}
	if estimator.regressor == nil {
		estimator.regressor = OLSRegressor{}
	}
	if estimator.tester == nil {
		estimator.tester = EngleGrangerTester{}
	}
	return estimator, nil
}

// FitRollingParams runs the default estimator: OLS hedge, Engle-Granger
// p-values, one worker.
func FitRollingParams(px, py datamodels.TimeSeries, window int) (datamodels.RollingEstimates, error) {
	estimator, err := NewRollingEstimator().Build()
	if err != nil {
		return datamodels.RollingEstimates{}, err
	}
	return estimator.FitRollingParams(px, py, window)
}

// FitRollingParams returns one estimate per timestamp in [window, len(px)),
// each fitted on the window ending just before it. When window is not
// shorter than the input the estimates are empty and the error wraps
// ErrValidation.
func (e *RollingEstimator) FitRollingParams(px, py datamodels.TimeSeries, window int) (datamodels.RollingEstimates, error) {
	if err := datamodels.CheckAligned(px, py); err != nil {
		return datamodels.RollingEstimates{}, err
	}
	if window < 1 {
		return datamodels.RollingEstimates{}, errors.Validationf("window must be at least 1, got %d", window)
	}
	if window >= px.Len() {
		empty := datamodels.NewRollingEstimates(window, px.From(px.Len()))
		return empty, errors.Validationf("window %d leaves no estimates for %d points", window, px.Len())
	}

	estimates := datamodels.NewRollingEstimates(window, px.From(window))
	fitAt := func(i int) {
		estimate := e.fitWindow(px.Values[i-window:i], py.Values[i-window:i])
		row := i - window
		estimates.Alphas.Values[row] = estimate.alpha
		estimates.Betas.Values[row] = estimate.beta
		estimates.SpreadMeans.Values[row] = estimate.spreadMean
		estimates.SpreadStds.Values[row] = estimate.spreadStd
		estimates.CointPValues.Values[row] = estimate.pValue
	}

	if e.workers == 1 {
		for i := window; i < px.Len(); i++ {
			fitAt(i)
		}
		return estimates, nil
	}

	var group errgroup.Group
	group.SetLimit(e.workers)
	for i := window; i < px.Len(); i++ {
		group.Go(func() error {
			fitAt(i)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return datamodels.RollingEstimates{}, err
	}
	return estimates, nil
}

type windowEstimate struct {
	alpha      float64
	beta       float64
	spreadMean float64
	spreadStd  float64
	pValue     float64
}

func (e *RollingEstimator) fitWindow(x, y []float64) windowEstimate {
	var estimate windowEstimate

	alpha, beta, err := e.regressor.Fit(x, y)
	if err != nil {
		// intercept only
		alpha, _ = stats.Mean(x)
		beta = 0
		slog.Debug("Hedge regression failed, using intercept only fit", "error", err, "alpha", alpha)
	}
	estimate.alpha, estimate.beta = alpha, beta

	spread := make([]float64, len(x))
	for i := range x {
		spread[i] = x[i] - (alpha + beta*y[i])
	}
	estimate.spreadMean, _ = stats.Mean(spread)
	if len(spread) > 1 {
		estimate.spreadStd, _ = stats.StandardDeviationSample(spread)
	}

	estimate.pValue = datamodels.DegeneratePValue
	result, err := e.tester.Test(x, y)
	switch {
	case err != nil:
		slog.Debug("Cointegration test failed", "error", err)
	case result.PValue >= 0 && result.PValue <= 1:
		estimate.pValue = result.PValue
	default:
		slog.Debug("Cointegration test returned an invalid p-value", "pvalue", result.PValue)
	}
	return estimate
}
