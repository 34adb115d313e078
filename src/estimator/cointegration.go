package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"pairbot/src/utils/errors"
)

// CointResult is the outcome of one cointegration test.
type CointResult struct {
	Statistic      float64
	PValue         float64
	CriticalValues [3]float64 // 1%, 5%, 10%
	UsedLag        int
	Nobs           int
}

// CointegrationTester scores whether x and y share a stationary linear
// combination. An error means the test could not be computed.
type CointegrationTester interface {
	Test(x, y []float64) (CointResult, error)
}

// perfectFitRSquared is the R² above which the residuals are treated as
// exactly stationary.
var perfectFitRSquared = 1 - 100*math.Sqrt(2.220446049250313e-16)

// EngleGrangerTester is the two step Engle-Granger test: regress x on a
// constant and y, then run an augmented Dickey-Fuller test on the residuals.
type EngleGrangerTester struct{}

func (EngleGrangerTester) Test(x, y []float64) (CointResult, error) {
	n := len(x)
	if n != len(y) {
		return CointResult{}, errors.Validationf("cointegration inputs have %d and %d points", len(x), len(y))
	}
	if n < 3 {
		return CointResult{}, errors.Wrapf(errors.ErrDegenerate, "need at least 3 points, have %d", n)
	}
	if isConstant(y) {
		return CointResult{}, errors.Wrapf(errors.ErrDegenerate, "regressor is constant")
	}

	design := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, y[i])
	}
	fit, err := fitOLS(x, design)
	if err != nil {
		return CointResult{}, errors.Wrap(err, "cointegrating regression failed")
	}
	rSquared, err := fit.rSquared(x)
	if err != nil {
		return CointResult{}, err
	}

	result := CointResult{CriticalValues: MacKinnonCriticalValues(n - 1), Nobs: n}
	if rSquared >= perfectFitRSquared {
		result.Statistic = math.Inf(-1)
		result.PValue = 0
		return result, nil
	}

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = x[i] - (fit.params[0] + fit.params[1]*y[i])
	}
	adf, err := augmentedDickeyFuller(residuals)
	if err != nil {
		return CointResult{}, errors.Wrap(err, "unit root test on residuals failed")
	}
	result.Statistic = adf.Statistic
	result.UsedLag = adf.UsedLag
	result.PValue = MacKinnonPValue(adf.Statistic)
	return result, nil
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
