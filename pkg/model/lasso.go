package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Lasso is linear regression with an L1 penalty, minimizing
//
//	(1 / 2n) ||y - Xw - b||² + Alpha ||w||₁
//
// by cyclic coordinate descent over the centered data. Iteration stops when
// the duality gap falls below Tol scaled by ||y - mean(y)||².
type Lasso struct {
	Alpha       float64
	MaxIter     int
	Tol         float64
	RandomState int64 // kept for catalogue parity; cyclic updates use no randomness

	W     []float64
	b     float64
	NIter int
	Gap   float64
}

type LassoOption func(*Lasso)

func WithAlpha(a float64) LassoOption          { return func(l *Lasso) { l.Alpha = a } }
func WithMaxIter(n int) LassoOption            { return func(l *Lasso) { l.MaxIter = n } }
func WithTol(t float64) LassoOption            { return func(l *Lasso) { l.Tol = t } }
func WithLassoRandomState(s int64) LassoOption { return func(l *Lasso) { l.RandomState = s } }

func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{Alpha: 1.0, MaxIter: 1000, Tol: 1e-4}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Lasso) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y, false)
	if err != nil {
		return err
	}
	n := len(X)
	xMean, yMean := columnMeans(X, p), floats.Sum(y)/float64(n)

	// column-major centered copy
	cols := make([][]float64, p)
	for j := range cols {
		cols[j] = make([]float64, n)
		for i := range X {
			cols[j][i] = X[i][j] - xMean[j]
		}
	}
	yc := make([]float64, n)
	for i := range y {
		yc[i] = y[i] - yMean
	}

	w := make([]float64, p)
	r := append([]float64(nil), yc...)
	norms := make([]float64, p)
	for j, c := range cols {
		norms[j] = floats.Dot(c, c)
	}

	penalty := l.Alpha * float64(n)
	tol := l.Tol * floats.Dot(yc, yc)
	l.Gap = tol + 1
	l.NIter = 0

	for iter := 0; iter < l.MaxIter; iter++ {
		l.NIter = iter + 1
		wMax, dMax := 0.0, 0.0
		for j, c := range cols {
			if norms[j] == 0 {
				continue
			}
			old := w[j]
			if old != 0 {
				floats.AddScaled(r, old, c)
			}
			w[j] = softThreshold(floats.Dot(c, r), penalty) / norms[j]
			if w[j] != 0 {
				floats.AddScaled(r, -w[j], c)
			}
			dMax = math.Max(dMax, math.Abs(w[j]-old))
			wMax = math.Max(wMax, math.Abs(w[j]))
		}

		if wMax == 0 || dMax/wMax < l.Tol || iter == l.MaxIter-1 {
			l.Gap = l.dualityGap(cols, r, yc, w, penalty)
			if l.Gap < tol {
				break
			}
		}
	}

	l.W = w
	l.b = yMean - floats.Dot(xMean, w)
	return nil
}

func (l *Lasso) dualityGap(cols [][]float64, r, yc, w []float64, penalty float64) float64 {
	dualNorm := 0.0
	for _, c := range cols {
		dualNorm = math.Max(dualNorm, math.Abs(floats.Dot(c, r)))
	}
	rNorm2 := floats.Dot(r, r)
	scale := 1.0
	gap := rNorm2
	if dualNorm > penalty {
		scale = penalty / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*scale*scale)
	}
	return gap + penalty*floats.Norm(w, 1) - scale*floats.Dot(r, yc)
}

func (l *Lasso) Predict(X [][]float64) ([]float64, error) {
	if l.W == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkX(X, len(l.W), false); err != nil {
		return nil, err
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		pred[i] = l.b + floats.Dot(l.W, row)
	}
	return pred, nil
}
