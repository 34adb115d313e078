package estimator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"pairbot/src/utils/errors"
)

// Regressor fits dependent = alpha + beta*regressor over equal-length slices.
type Regressor interface {
	Fit(dependent, regressor []float64) (alpha, beta float64, err error)
}

// OLSRegressor is ordinary least squares with an intercept.
type OLSRegressor struct{}

func (OLSRegressor) Fit(dependent, regressor []float64) (float64, float64, error) {
	if len(dependent) != len(regressor) {
		return 0, 0, errors.Validationf("regression inputs have %d and %d points", len(dependent), len(regressor))
	}
	if len(dependent) < 2 {
		return 0, 0, errors.Wrapf(errors.ErrDegenerate, "need at least 2 points, have %d", len(dependent))
	}
	alpha, beta := stat.LinearRegression(regressor, dependent, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return 0, 0, errors.Wrapf(errors.ErrDegenerate, "regressor has no variance")
	}
	return alpha, beta, nil
}
