package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a multinomial (softmax) classifier with an L2
// penalty on the weights, fitted with L-BFGS. The objective is
//
//	(1/n) Σ -log softmax(W x_i + b)[y_i] + ||W||² / (2 C n)
//
// with the intercepts left unpenalized.
type LogisticRegression struct {
	C           float64 // inverse regularization strength
	MaxIter     int
	Tol         float64 // gradient infinity-norm threshold
	RandomState int64   // kept for catalogue parity; L-BFGS is deterministic

	W       [][]float64 // weights, one row per class
	b       []float64   // bias per class
	classes []float64   // training labels, aligned with W
	Status  optimize.Status
}

type LogisticOption func(*LogisticRegression)

func WithC(c float64) LogisticOption                 { return func(m *LogisticRegression) { m.C = c } }
func WithLogisticMaxIter(n int) LogisticOption       { return func(m *LogisticRegression) { m.MaxIter = n } }
func WithLogisticRandomState(s int64) LogisticOption { return func(m *LogisticRegression) { m.RandomState = s } }

// NewLogisticRegression initializes a new Logistic Regression model.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	m := &LogisticRegression{C: 1.0, MaxIter: 100, Tol: 1e-4}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit minimizes the penalized cross-entropy. Hitting the iteration limit is
// not an error; the best point found is kept.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y, false)
	if err != nil {
		return err
	}
	if _, err := classCount(y); err != nil {
		return err
	}

	// classes present in the training labels, in label order
	present := map[float64]bool{}
	m.classes = m.classes[:0]
	for _, v := range y {
		if !present[v] {
			present[v] = true
			m.classes = append(m.classes, v)
		}
	}
	if len(m.classes) < 2 {
		return ErrSingleClass
	}
	sort.Float64s(m.classes)
	target := make([]int, len(y))
	for i, v := range y {
		for k, c := range m.classes {
			if c == v {
				target[i] = k
				break
			}
		}
	}

	k := len(m.classes)
	n := float64(len(X))
	stride := p + 1 // weights then bias, per class
	penalty := 1 / (m.C * n)
	logits := make([]float64, k)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			loss := 0.0
			for i, row := range X {
				scores(logits, x, row, stride)
				loss += logSumExp(logits) - logits[target[i]]
			}
			loss /= n
			for c := 0; c < k; c++ {
				w := x[c*stride : c*stride+p]
				loss += 0.5 * penalty * floats.Dot(w, w)
			}
			return loss
		},
		Grad: func(grad, x []float64) {
			for i := range grad {
				grad[i] = 0
			}
			for i, row := range X {
				scores(logits, x, row, stride)
				lse := logSumExp(logits)
				for c := 0; c < k; c++ {
					d := math.Exp(logits[c] - lse)
					if c == target[i] {
						d--
					}
					g := grad[c*stride : (c+1)*stride]
					floats.AddScaled(g[:p], d/n, row)
					g[p] += d / n
				}
			}
			for c := 0; c < k; c++ {
				floats.AddScaled(grad[c*stride:c*stride+p], penalty, x[c*stride:c*stride+p])
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: m.Tol,
		MajorIterations:   m.MaxIter,
	}
	x0 := make([]float64, k*stride)
	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil || len(res.X) != len(x0) {
		return err
	}
	m.Status = res.Status

	m.W = make([][]float64, k)
	m.b = make([]float64, k)
	for c := 0; c < k; c++ {
		m.W[c] = append([]float64(nil), res.X[c*stride:c*stride+p]...)
		m.b[c] = res.X[c*stride+p]
	}
	return nil
}

// PredictProba returns the softmax probabilities over the training classes
// for each input row in X.
func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if m.W == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkX(X, len(m.W[0]), false); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		z := make([]float64, len(m.W))
		for c, w := range m.W {
			z[c] = m.b[c] + floats.Dot(w, row)
		}
		lse := logSumExp(z)
		for c := range z {
			z[c] = math.Exp(z[c] - lse)
		}
		out[i] = z
	}
	return out, nil
}

// Predict returns the most probable class label per row.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		out[i] = m.classes[argmax(p)]
	}
	return out, nil
}

// scores writes W_c·row + b_c for each class into dst.
func scores(dst, x, row []float64, stride int) {
	p := stride - 1
	for c := range dst {
		dst[c] = x[c*stride+p] + floats.Dot(x[c*stride:c*stride+p], row)
	}
}

func logSumExp(z []float64) float64 {
	mx := floats.Max(z)
	s := 0.0
	for _, v := range z {
		s += math.Exp(v - mx)
	}
	return mx + math.Log(s)
}
