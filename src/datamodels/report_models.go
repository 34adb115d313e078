package datamodels

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// BacktestReport bundles every stage of one run on the estimate index.
type BacktestReport struct {
	RunID             uuid.UUID
	Name              string
	ConfigFingerprint string
	Commit            string
	StartedAt         time.Time
	Signal            SignalConfig
	TransactionCost   float64

	PriceX    TimeSeries
	PriceY    TimeSeries
	Estimates RollingEstimates
	ZScore    TimeSeries
	Result    ReturnsResult
}

// Summary flattens the report into its run row.
func (r *BacktestReport) Summary() BacktestRun {
	cumPnL, cumPnLNet, cumReturn, cumReturnNet := r.Result.FinalCumulative()
	run := BacktestRun{
		BaseModelUUID:     BaseModelUUID{ID: r.RunID},
		Name:              r.Name,
		ConfigFingerprint: r.ConfigFingerprint,
		Commit:            r.Commit,
		StartedAt:         r.StartedAt,
		SymbolX:           r.PriceX.Name,
		SymbolY:           r.PriceY.Name,
		Window:            r.Estimates.Window,
		EntryThreshold:    r.Signal.EntryThreshold,
		ExitThreshold:     r.Signal.ExitThreshold,
		StopZ:             r.Signal.StopZ,
		TransactionCost:   r.TransactionCost,
		Periods:           r.Result.Len(),
		Trades:            r.Result.TradeCount(),
		Sharpe:            r.Result.Sharpe,
		SharpeNet:         r.Result.SharpeNet,
		CumPnL:            cumPnL,
		CumPnLNet:         cumPnLNet,
		CumReturn:         cumReturn,
		CumReturnNet:      cumReturnNet,
	}
	if n := len(r.PriceX.Index); n > 0 {
		run.FirstTimestamp = r.PriceX.Index[0]
		run.LastTimestamp = r.PriceX.Index[n-1]
	}
	return run
}

// Periods flattens the report into one row per timestamp. Undefined
// z-scores are left nil.
func (r *BacktestReport) Periods() []BacktestPeriod {
	n := r.Result.Len()
	periods := make([]BacktestPeriod, n)
	for i := 0; i < n; i++ {
		var zscore *float64
		if z := r.ZScore.Values[i]; !math.IsNaN(z) && !math.IsInf(z, 0) {
			zscore = &z
		}
		periods[i] = BacktestPeriod{
			RunID:        r.RunID,
			Timestamp:    r.PriceX.Index[i],
			PriceX:       r.PriceX.Values[i],
			PriceY:       r.PriceY.Values[i],
			Alpha:        r.Estimates.Alphas.Values[i],
			Beta:         r.Estimates.Betas.Values[i],
			SpreadMean:   r.Estimates.SpreadMeans.Values[i],
			SpreadStd:    r.Estimates.SpreadStds.Values[i],
			CointPValue:  r.Estimates.CointPValues.Values[i],
			ZScore:       zscore,
			Position:     r.Result.Positions.Values[i],
			Turnover:     r.Result.Turnover.Values[i],
			Cost:         r.Result.Costs.Values[i],
			PnL:          r.Result.GrossPnL.Values[i],
			PnLNet:       r.Result.NetPnL.Values[i],
			CumPnL:       r.Result.CumGrossPnL.Values[i],
			CumPnLNet:    r.Result.CumNetPnL.Values[i],
			Return:       r.Result.GrossReturns.Values[i],
			ReturnNet:    r.Result.NetReturns.Values[i],
			CumReturn:    r.Result.CumGrossReturns.Values[i],
			CumReturnNet: r.Result.CumNetReturns.Values[i],
		}
	}
	return periods
}
