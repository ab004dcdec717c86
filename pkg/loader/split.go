package loader

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	DefaultTestRatio = 0.2
	DefaultSeed      = 42
)

var (
	ErrBadRatio       = errors.New("loader: test ratio must be in (0, 1)")
	ErrTooFewSamples  = errors.New("loader: not enough samples to split")
	ErrLengthMismatch = errors.New("loader: X and y length mismatch")
)

// SplitIndices shuffles 0..n-1 with a generator seeded by seed and returns
// the row indices of each partition. The test partition holds the first
// ceil(n*testRatio) shuffled rows, so identical inputs always split the same
// way.
func SplitIndices(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, ErrBadRatio
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows, test ratio %g", ErrTooFewSamples, n, testRatio)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	return indices[nTest:], indices[:nTest], nil
}

// TrainTestSplit splits X, Y into train and test sets by ratio.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64, err error) {
	if len(X) != len(Y) {
		err = fmt.Errorf("%w: %d rows vs %d labels", ErrLengthMismatch, len(X), len(Y))
		return
	}
	trainIdx, testIdx, err := SplitIndices(len(X), testRatio, seed)
	if err != nil {
		return
	}
	XTrain, YTrain = Take(X, Y, trainIdx)
	XTest, YTest = Take(X, Y, testIdx)
	return
}

// Take gathers the rows of X and Y at idx.
func Take(X [][]float64, Y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = Y[j]
	}
	return xs, ys
}
