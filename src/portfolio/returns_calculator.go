package portfolio

import (
	"math"

	"github.com/montanaflynn/stats"

	"pairbot/src/datamodels"
	"pairbot/src/utils/errors"
)

// TradingDaysPerYear annualises the per-period Sharpe ratio.
const TradingDaysPerYear = 252

type returnsOptions struct {
	alphas *datamodels.TimeSeries
}

type ReturnsOption func(*returnsOptions)

// WithAlphas sets the hedge intercepts used to build the spread. Without it
// every intercept is zero.
func WithAlphas(alphas datamodels.TimeSeries) ReturnsOption {
	return func(o *returnsOptions) {
		o.alphas = &alphas
	}
}

// CalculateReturns trades one unit of spread px - (alpha + beta*py) per unit
// of position. A position takes effect one period after it is decided, so
// period t earns positions[t-1] times the spread change into t. Returns are
// measured on the previous period's gross notional and are 0 where that is
// zero or the ratio is not finite.
func CalculateReturns(
	px, py datamodels.TimeSeries,
	positions datamodels.PositionSeries,
	betas datamodels.TimeSeries,
	tc float64,
	opts ...ReturnsOption,
) (datamodels.ReturnsResult, error) {
	var options returnsOptions
	for _, opt := range opts {
		opt(&options)
	}

	aligned := []datamodels.Indexed{positions, px, py, betas}
	if options.alphas != nil {
		aligned = append(aligned, *options.alphas)
	}
	if err := datamodels.CheckAligned(aligned...); err != nil {
		return datamodels.ReturnsResult{}, err
	}
	if math.IsNaN(tc) || math.IsInf(tc, 0) || tc < 0 {
		return datamodels.ReturnsResult{}, errors.Validationf("transaction cost must be finite and non-negative, got %v", tc)
	}
	for i, p := range positions.Values {
		if !p.IsValid() {
			return datamodels.ReturnsResult{}, errors.Validationf("position %d at %d is not one of -1, 0, 1", int8(p), i)
		}
	}

	n := positions.Len()
	alphas := make([]float64, n)
	if options.alphas != nil {
		alphas = options.alphas.Values
	}

	var (
		grossPnL     = make([]float64, n)
		netPnL       = make([]float64, n)
		grossReturns = make([]float64, n)
		netReturns   = make([]float64, n)
		costs        = make([]float64, n)
		turnover     = make([]float64, n)
	)

	previousSpread, previousNotional := 0.0, 0.0
	previousPosition := datamodels.Flat
	for t := 0; t < n; t++ {
		spread := px.Values[t] - (alphas[t] + betas.Values[t]*py.Values[t])
		notional := math.Abs(px.Values[t]) + math.Abs(betas.Values[t])*math.Abs(py.Values[t])

		if t > 0 {
			grossPnL[t] = previousPosition.Float() * (spread - previousSpread)
			turnover[t] = math.Abs(positions.Values[t].Float() - previousPosition.Float())
		}
		costs[t] = tc * notional * turnover[t]
		netPnL[t] = grossPnL[t] - costs[t]
		grossReturns[t] = safeReturn(grossPnL[t], previousNotional)
		netReturns[t] = safeReturn(netPnL[t], previousNotional)

		previousSpread, previousNotional = spread, notional
		previousPosition = positions.Values[t]
	}

	return datamodels.ReturnsResult{
		GrossPnL:        datamodels.WithValues(positions, "pnl", grossPnL),
		NetPnL:          datamodels.WithValues(positions, "pnl_net", netPnL),
		CumGrossPnL:     datamodels.WithValues(positions, "cum_pnl", cumulativeSum(grossPnL)),
		CumNetPnL:       datamodels.WithValues(positions, "cum_pnl_net", cumulativeSum(netPnL)),
		GrossReturns:    datamodels.WithValues(positions, "return", grossReturns),
		NetReturns:      datamodels.WithValues(positions, "return_net", netReturns),
		CumGrossReturns: datamodels.WithValues(positions, "cum_return", compound(grossReturns)),
		CumNetReturns:   datamodels.WithValues(positions, "cum_return_net", compound(netReturns)),
		Costs:           datamodels.WithValues(positions, "cost", costs),
		Turnover:        datamodels.WithValues(positions, "turnover", turnover),
		Sharpe:          SharpeRatio(grossReturns),
		SharpeNet:       SharpeRatio(netReturns),
		Positions:       positions,
	}, nil
}

func safeReturn(pnl, laggedNotional float64) float64 {
	if laggedNotional == 0 {
		return 0
	}
	r := pnl / laggedNotional
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// SharpeRatio is mean/std(sample) * sqrt(252), or 0 when the returns have no
// positive spread.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	std, err := stats.StandardDeviationSample(returns)
	if err != nil || !(std > 0) {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	return mean / std * math.Sqrt(TradingDaysPerYear)
}

func cumulativeSum(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	sums, _ := stats.CumulativeSum(values)
	return sums
}

// compound returns prod(1 + r) - 1 up to each period.
func compound(returns []float64) []float64 {
	out := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		out[i] = growth - 1
	}
	return out
}
