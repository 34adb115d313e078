package datamodels

import "time"

// DegeneratePValue marks a cointegration test that could not be computed.
const DegeneratePValue = 1.0

// RollingEstimates holds one hedge fit per timestamp from px.Index[window] onward.
type RollingEstimates struct {
	Window       int
	Alphas       TimeSeries
	Betas        TimeSeries
	SpreadMeans  TimeSeries
	SpreadStds   TimeSeries
	CointPValues TimeSeries
}

// NewRollingEstimates allocates n rows on the given index.
func NewRollingEstimates[T any](window int, index Series[T]) RollingEstimates {
	n := index.Len()
	return RollingEstimates{
		Window:       window,
		Alphas:       WithValues(index, "alpha", make([]float64, n)),
		Betas:        WithValues(index, "beta", make([]float64, n)),
		SpreadMeans:  WithValues(index, "spread_mean", make([]float64, n)),
		SpreadStds:   WithValues(index, "spread_std", make([]float64, n)),
		CointPValues: WithValues(index, "coint_pvalue", make([]float64, n)),
	}
}

func (e RollingEstimates) Len() int {
	return e.Betas.Len()
}

func (e RollingEstimates) GetName() string {
	return "rolling_estimates"
}

func (e RollingEstimates) GetIndex() []time.Time {
	return e.Betas.Index
}
