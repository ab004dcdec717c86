package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrShape = errors.New("stats: column count differs from fitted data")

// StandardScaler standardizes each column to zero mean and unit variance
// using the population standard deviation of the data it was fitted on.
// Missing values (NaN) are left out of the fit and stay NaN after Transform.
// Constant or all-missing columns keep a scale of 1.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return nil
	}
	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		col = col[:0]
		for i := 0; i < r; i++ {
			if len(X[i]) != c {
				return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(X[i]), c)
			}
			if v := X[i][j]; !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		s.Mean[j], s.Std[j] = 0, 1
		if len(col) == 0 {
			continue
		}
		mean, variance := stat.MeanVariance(col, nil)
		if n := len(col); n > 1 {
			// MeanVariance is the unbiased estimate; rescale to population.
			variance *= float64(n-1) / float64(n)
		} else {
			variance = 0
		}
		s.Mean[j] = mean
		if std := math.Sqrt(variance); std > 0 {
			s.Std[j] = std
		}
	}
	s.fit = true
	return nil
}

// Transform returns a standardized copy of X. An unfitted scaler returns X
// unchanged.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fit {
		return X, nil
	}
	Y := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), len(s.Mean))
		}
		out := make([]float64, len(row))
		for j, v := range row {
			out[j] = (v - s.Mean[j]) / s.Std[j]
		}
		Y[i] = out
	}
	return Y, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
