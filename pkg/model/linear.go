package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrSVD = errors.New("linear: SVD factorization failed")

// LinearRegression is ordinary least squares with an intercept. The
// coefficients are the minimum-norm solution over the centered data, so
// collinear or constant features do not fail the fit.
type LinearRegression struct {
	W []float64 // weights
	b float64   // bias
}

func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves min ||y - Xw - b||² through a thin SVD of the centered X.
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y, false)
	if err != nil {
		return err
	}
	n := len(X)
	xMean, yMean := columnMeans(X, p), floats.Sum(y)/float64(n)

	a := mat.NewDense(n, p, nil)
	yc := make([]float64, n)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		yc[i] = y[i] - yMean
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return ErrSVD
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// singular values below the cutoff are treated as zero
	cutoff := 0.0
	if len(s) > 0 {
		cutoff = s[0] * float64(max(n, p)) * 2.220446049250313e-16
	}
	w := make([]float64, p)
	uk := make([]float64, n)
	for k, sk := range s {
		if sk <= cutoff {
			continue
		}
		mat.Col(uk, k, &u)
		c := floats.Dot(uk, yc) / sk
		for j := 0; j < p; j++ {
			w[j] += c * v.At(j, k)
		}
	}

	m.W = w
	m.b = yMean - floats.Dot(xMean, w)
	return nil
}

// Predict returns predictions for rows in X (rows of features).
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if m.W == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkX(X, len(m.W), false); err != nil {
		return nil, err
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		pred[i] = m.b + floats.Dot(m.W, row)
	}
	return pred, nil
}

// Bias returns the current bias value of the model.
func (m *LinearRegression) Bias() float64 {
	return m.b
}

func columnMeans(X [][]float64, p int) []float64 {
	means := make([]float64, p)
	for _, row := range X {
		floats.Add(means, row)
	}
	floats.Scale(1/float64(len(X)), means)
	return means
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func softThreshold(x, t float64) float64 {
	return signum(x) * math.Max(math.Abs(x)-t, 0)
}
