package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"pairbot/src/utils/errors"
)

// olsFit is a least squares fit of y on the columns of a design matrix.
type olsFit struct {
	params  []float64
	ssr     float64
	nobs    int
	k       int
	normCov *mat.Dense // (X'X)^-1
}

func fitOLS(y []float64, design *mat.Dense) (olsFit, error) {
	if design == nil {
		return olsFit{}, errors.Wrapf(errors.ErrDegenerate, "empty design")
	}
	rows, cols := design.Dims()
	if rows != len(y) {
		return olsFit{}, errors.Newf("design has %d rows for %d observations", rows, len(y))
	}
	if rows <= cols {
		return olsFit{}, errors.Wrapf(errors.ErrDegenerate, "%d observations for %d regressors", rows, cols)
	}

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var normCov mat.Dense
	if err := normCov.Inverse(&xtx); err != nil {
		return olsFit{}, errors.WrapE(errors.ErrDegenerate, err)
	}

	yVec := mat.NewVecDense(rows, y)
	var xty, params, fitted mat.VecDense
	xty.MulVec(design.T(), yVec)
	params.MulVec(&normCov, &xty)
	fitted.MulVec(design, &params)

	ssr := 0.0
	for i := 0; i < rows; i++ {
		resid := y[i] - fitted.AtVec(i)
		ssr += resid * resid
	}

	return olsFit{
		params:  mat.Col(nil, 0, &params),
		ssr:     ssr,
		nobs:    rows,
		k:       cols,
		normCov: &normCov,
	}, nil
}

// aic uses the Gaussian log likelihood and counts every column as a parameter.
func (f olsFit) aic() float64 {
	n := float64(f.nobs)
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(f.ssr/n) + 1)
	return -2*llf + 2*float64(f.k)
}

func (f olsFit) tValue(j int) (float64, error) {
	dof := f.nobs - f.k
	if dof <= 0 {
		return 0, errors.Wrapf(errors.ErrDegenerate, "no residual degrees of freedom")
	}
	variance := f.ssr / float64(dof) * f.normCov.At(j, j)
	if !(variance > 0) {
		return 0, errors.Wrapf(errors.ErrDegenerate, "standard error of parameter %d is %v", j, math.Sqrt(variance))
	}
	return f.params[j] / math.Sqrt(variance), nil
}

// rSquared is the centred coefficient of determination.
func (f olsFit) rSquared(y []float64) (float64, error) {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	tss := 0.0
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	if tss == 0 {
		return 0, errors.Wrapf(errors.ErrDegenerate, "dependent series is constant")
	}
	return 1 - f.ssr/tss, nil
}
