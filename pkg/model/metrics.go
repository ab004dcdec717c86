package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrTooFewForR2 = errors.New("metrics: r2 needs at least two samples")

func checkPair(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return ErrEmpty
	}
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: %d true vs %d predicted", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	for i := range yTrue {
		if math.IsNaN(yTrue[i]) || math.IsInf(yTrue[i], 0) || math.IsNaN(yPred[i]) || math.IsInf(yPred[i], 0) {
			return ErrNonFinite
		}
	}
	return nil
}

func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue)), nil
}

func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue)), nil
}

func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2 is the coefficient of determination. A constant yTrue scores 1 when
// predicted exactly and 0 otherwise.
func R2(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	if len(yTrue) < 2 {
		return 0, ErrTooFewForR2
	}
	m := stat.Mean(yTrue, nil)
	ssTot := 0.0
	ssRes := 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue)), nil
}

// PrecisionRecallF1 computes per-class precision, recall and F1 over the
// union of true and predicted labels and averages them weighted by each
// class's support in yTrue. A zero denominator scores 0.
func PrecisionRecallF1(yTrue, yPred []float64) (prec, rec, f1 float64, err error) {
	if err = checkPair(yTrue, yPred); err != nil {
		return
	}
	type tally struct{ tp, fp, fn, support float64 }
	classes := map[float64]*tally{}
	get := func(c float64) *tally {
		t, ok := classes[c]
		if !ok {
			t = &tally{}
			classes[c] = t
		}
		return t
	}
	for i := range yTrue {
		get(yTrue[i]).support++
		if yTrue[i] == yPred[i] {
			get(yTrue[i]).tp++
		} else {
			get(yPred[i]).fp++
			get(yTrue[i]).fn++
		}
	}

	labels := make([]float64, 0, len(classes))
	for c := range classes {
		labels = append(labels, c)
	}
	sort.Float64s(labels)

	var ps, rs, fs, ws []float64
	for _, c := range labels {
		t := classes[c]
		p, r, f := 0.0, 0.0, 0.0
		if t.tp+t.fp > 0 {
			p = t.tp / (t.tp + t.fp)
		}
		if t.tp+t.fn > 0 {
			r = t.tp / (t.tp + t.fn)
		}
		if denom := 2*t.tp + t.fp + t.fn; denom > 0 {
			f = 2 * t.tp / denom
		}
		ps, rs, fs, ws = append(ps, p), append(rs, r), append(fs, f), append(ws, t.support)
	}
	total := floats.Sum(ws)
	prec = floats.Dot(ps, ws) / total
	rec = floats.Dot(rs, ws) / total
	f1 = floats.Dot(fs, ws) / total
	return
}

func Precision(yTrue, yPred []float64) (float64, error) {
	p, _, _, err := PrecisionRecallF1(yTrue, yPred)
	return p, err
}

func Recall(yTrue, yPred []float64) (float64, error) {
	_, r, _, err := PrecisionRecallF1(yTrue, yPred)
	return r, err
}

func F1(yTrue, yPred []float64) (float64, error) {
	_, _, f, err := PrecisionRecallF1(yTrue, yPred)
	return f, err
}
