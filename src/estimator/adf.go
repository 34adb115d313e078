package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"pairbot/src/utils/errors"
)

type adfResult struct {
	Statistic float64
	UsedLag   int
	Nobs      int
}

// adfMaxLag is Schwert's rule capped so the lagged design keeps at least
// half the sample: min(n/2 - 1, ceil(12*(n/100)^(1/4))).
func adfMaxLag(n int) int {
	maxLag := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 1; limit < maxLag {
		maxLag = limit
	}
	return maxLag
}

// augmentedDickeyFuller tests x for a unit root with no deterministic term,
// choosing the lag count by minimum AIC over a common sample.
func augmentedDickeyFuller(x []float64) (adfResult, error) {
	n := len(x)
	if n == 0 {
		return adfResult{}, errors.Wrapf(errors.ErrDegenerate, "empty series")
	}
	if isConstant(x) {
		return adfResult{}, errors.Wrapf(errors.ErrDegenerate, "series is constant")
	}

	maxLag := adfMaxLag(n)
	if maxLag < 0 {
		return adfResult{}, errors.Wrapf(errors.ErrDegenerate, "sample of %d is too short", n)
	}

	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = x[i] - x[i-1]
	}

	bestLag := -1
	bestAIC := math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		y, design := adfDesign(x, diffs, lag, maxLag)
		fit, err := fitOLS(y, design)
		if err != nil {
			continue
		}
		if aic := fit.aic(); bestLag < 0 || aic < bestAIC {
			bestLag, bestAIC = lag, aic
		}
	}
	if bestLag < 0 {
		return adfResult{}, errors.Wrapf(errors.ErrDegenerate, "no lag length up to %d could be fitted", maxLag)
	}

	y, design := adfDesign(x, diffs, bestLag, bestLag)
	fit, err := fitOLS(y, design)
	if err != nil {
		return adfResult{}, err
	}
	statistic, err := fit.tValue(0)
	if err != nil {
		return adfResult{}, err
	}
	if math.IsNaN(statistic) || math.IsInf(statistic, 0) {
		return adfResult{}, errors.Wrapf(errors.ErrDegenerate, "ADF statistic is %v", statistic)
	}
	return adfResult{Statistic: statistic, UsedLag: bestLag, Nobs: fit.nobs}, nil
}

// adfDesign regresses diffs[t] on x[t] and diffs[t-1..t-lag] for t starting
// at sampleStart, so fits with different lags can share one sample.
func adfDesign(x, diffs []float64, lag, sampleStart int) ([]float64, *mat.Dense) {
	rows := len(diffs) - sampleStart
	cols := lag + 1
	y := make([]float64, rows)
	data := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		t := sampleStart + r
		y[r] = diffs[t]
		data[r*cols] = x[t]
		for j := 1; j <= lag; j++ {
			data[r*cols+j] = diffs[t-j]
		}
	}
	if rows <= 0 {
		return y, nil
	}
	return y, mat.NewDense(rows, cols, data)
}
