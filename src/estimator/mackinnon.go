package estimator

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MacKinnon (1994) response surface for the Engle-Granger test on two
// series with a constant.
const (
	mackinnonTauMax  = 0.92
	mackinnonTauMin  = -18.86
	mackinnonTauStar = -2.62
)

var (
	mackinnonSmallP = []float64{2.92, 1.5012, 0.039796}
	mackinnonLargeP = []float64{2.1945, 0.64695, -0.29198, -0.042377}
)

// MacKinnon (2010) finite sample critical values at 1%, 5% and 10%:
// b0 + b1/T + b2/T^2.
var mackinnonCritical = [3][3]float64{
	{-3.89644, -10.9519, -22.527},
	{-3.33613, -6.1101, -6.823},
	{-3.04445, -4.2412, -2.720},
}

// MacKinnonPValue maps an Engle-Granger statistic to its approximate p-value.
func MacKinnonPValue(statistic float64) float64 {
	switch {
	case math.IsNaN(statistic):
		return 1
	case statistic > mackinnonTauMax:
		return 1
	case statistic < mackinnonTauMin:
		return 0
	}
	coefficients := mackinnonLargeP
	if statistic <= mackinnonTauStar {
		coefficients = mackinnonSmallP
	}
	return distuv.UnitNormal.CDF(polyval(coefficients, statistic))
}

// MacKinnonCriticalValues returns the 1%, 5% and 10% critical values for a
// sample of nobs observations.
func MacKinnonCriticalValues(nobs int) [3]float64 {
	var values [3]float64
	t := float64(nobs)
	for i, b := range mackinnonCritical {
		values[i] = b[0] + b[1]/t + b[2]/(t*t)
	}
	return values
}

// polyval evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func polyval(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
