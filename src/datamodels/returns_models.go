package datamodels

// ReturnsResult is the performance of one position series over a price pair.
// Every series shares the index of the inputs it was computed from.
type ReturnsResult struct {
	// P&L in dollars per unit of spread
	GrossPnL    TimeSeries
	NetPnL      TimeSeries
	CumGrossPnL TimeSeries
	CumNetPnL   TimeSeries

	// percentage returns on the previous period's gross notional
	GrossReturns    TimeSeries
	NetReturns      TimeSeries
	CumGrossReturns TimeSeries
	CumNetReturns   TimeSeries

	Costs    TimeSeries
	Turnover TimeSeries

	// annualised
	Sharpe    float64
	SharpeNet float64

	Positions PositionSeries
}

func (r ReturnsResult) Len() int {
	return r.Positions.Len()
}

// FinalCumulative returns the last cumulative values, zero when empty.
func (r ReturnsResult) FinalCumulative() (grossPnL, netPnL, grossReturn, netReturn float64) {
	grossPnL, _ = r.CumGrossPnL.Last()
	netPnL, _ = r.CumNetPnL.Last()
	grossReturn, _ = r.CumGrossReturns.Last()
	netReturn, _ = r.CumNetReturns.Last()
	return grossPnL, netPnL, grossReturn, netReturn
}

// TradeCount is the number of periods with non-zero turnover.
func (r ReturnsResult) TradeCount() int {
	count := 0
	for _, units := range r.Turnover.Values {
		if units != 0 {
			count++
		}
	}
	return count
}
