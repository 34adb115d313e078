package strategies

import (
	"math"

	"pairbot/src/datamodels"
)

// SpreadZScore standardises the spread at each estimate timestamp with the
// estimate published there, which was fitted on the preceding window:
//
//	z[i] = (px[i] - alpha[i] - beta[i]*py[i] - spreadMean[i]) / spreadStd[i]
//
// A zero or non-finite spread std gives NaN. px and py must be trimmed to the
// estimate index.
func SpreadZScore(px, py datamodels.TimeSeries, est datamodels.RollingEstimates) (datamodels.TimeSeries, error) {
	if err := datamodels.CheckAligned(est, px, py); err != nil {
		return datamodels.TimeSeries{}, err
	}
	z := make([]float64, est.Len())
	for i := range z {
		std := est.SpreadStds.Values[i]
		if !(std > 0) || math.IsInf(std, 0) {
			z[i] = math.NaN()
			continue
		}
		spread := px.Values[i] - (est.Alphas.Values[i] + est.Betas.Values[i]*py.Values[i])
		z[i] = (spread - est.SpreadMeans.Values[i]) / std
	}
	return datamodels.WithValues(est.Betas, "zscore", z), nil
}
