package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmpty          = errors.New("model: empty input")
	ErrLengthMismatch = errors.New("model: X and y length mismatch")
	ErrRagged         = errors.New("model: inconsistent number of features in X rows")
	ErrNoFeatures     = errors.New("model: X has no features")
	ErrNonFinite      = errors.New("model: input contains NaN or infinity")
	ErrNotFitted      = errors.New("model: predict called before fit")
	ErrFeatureCount   = errors.New("model: feature count differs from training data")
	ErrSingleClass    = errors.New("model: training data holds a single class")
	ErrBadLabel       = errors.New("model: class labels must be non-negative integers")
)

// Model is a generic supervised learning interface. Classifiers take and
// return class indices 0..k-1 encoded as float64.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// checkXY validates a training set and returns the feature count. Tree
// models accept NaN features, linear models do not.
func checkXY(X [][]float64, y []float64, allowNaN bool) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	if len(y) != len(X) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, len(X), len(y))
	}
	p, err := checkX(X, -1, allowNaN)
	if err != nil {
		return 0, err
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: y", ErrNonFinite)
		}
	}
	return p, nil
}

// checkX validates a feature matrix. want < 0 accepts any width.
func checkX(X [][]float64, want int, allowNaN bool) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	p := len(X[0])
	if p == 0 {
		return 0, ErrNoFeatures
	}
	if want >= 0 && p != want {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, p, want)
	}
	for i, row := range X {
		if len(row) != p {
			return 0, fmt.Errorf("%w: row %d", ErrRagged, i)
		}
		for _, v := range row {
			if math.IsInf(v, 0) || (!allowNaN && math.IsNaN(v)) {
				return 0, fmt.Errorf("%w: X row %d", ErrNonFinite, i)
			}
		}
	}
	return p, nil
}

// classCount returns 1 + the largest label, rejecting labels that are not
// non-negative integers.
func classCount(y []float64) (int, error) {
	k := 0
	for _, v := range y {
		if v < 0 || v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", ErrBadLabel, v)
		}
		if int(v)+1 > k {
			k = int(v) + 1
		}
	}
	return k, nil
}

func argmax(x []float64) int {
	best := 0
	for i := 1; i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
