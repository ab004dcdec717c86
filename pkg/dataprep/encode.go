package dataprep

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"automl/pkg/data"
)

var (
	ErrUnseenLabel   = errors.New("dataprep: label not seen during fit")
	ErrMissingTarget = errors.New("dataprep: target has missing values")
	ErrNumericTarget = errors.New("dataprep: regression target must be numeric")
	ErrNotFitted     = errors.New("dataprep: encoder not fitted")
)

// LabelEncoder maps each distinct string to its rank among the sorted
// distinct values, so the mapping only depends on the set of values seen.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

func NewLabelEncoder() *LabelEncoder { return &LabelEncoder{} }

func (e *LabelEncoder) Fit(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	e.Classes = e.Classes[:0]
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			e.Classes = append(e.Classes, v)
		}
	}
	sort.Strings(e.Classes)
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
	return e
}

func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	if e.index == nil {
		return nil, ErrNotFitted
	}
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnseenLabel, v)
		}
		out[i] = code
	}
	return out, nil
}

func (e *LabelEncoder) FitTransform(values []string) []int {
	out, _ := e.Fit(values).Transform(values)
	return out
}

// LabelEncode encodes categories as integers.
func LabelEncode(data []string) ([]int, map[string]int) {
	enc := NewLabelEncoder()
	codes := enc.FitTransform(data)
	mapping := make(map[string]int, len(enc.Classes))
	for k, v := range enc.index {
		mapping[k] = v
	}
	return codes, mapping
}

// EncodeTarget turns a classification target into class indices. Numeric
// targets are ordered numerically, text targets lexically. The returned
// class names are indexed by class code.
func EncodeTarget(col *data.Column) ([]float64, []string, error) {
	if col.Kind == data.Text {
		enc := NewLabelEncoder()
		codes := enc.FitTransform(col.Strings)
		y := make([]float64, len(codes))
		for i, c := range codes {
			y[i] = float64(c)
		}
		return y, enc.Classes, nil
	}

	uniq := make([]float64, 0)
	seen := make(map[float64]struct{})
	for _, v := range col.Floats {
		if math.IsNaN(v) {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingTarget, col.Name)
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	sort.Float64s(uniq)
	codes := make(map[float64]int, len(uniq))
	classes := make([]string, len(uniq))
	for i, v := range uniq {
		codes[v] = i
		classes[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	y := make([]float64, len(col.Floats))
	for i, v := range col.Floats {
		y[i] = float64(codes[v])
	}
	return y, classes, nil
}

// RegressionTarget returns a copy of a numeric target, rejecting text and
// missing values.
func RegressionTarget(col *data.Column) ([]float64, error) {
	if col.Kind != data.Numeric {
		return nil, fmt.Errorf("%w: %q", ErrNumericTarget, col.Name)
	}
	y := make([]float64, len(col.Floats))
	for i, v := range col.Floats {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %q", ErrMissingTarget, col.Name)
		}
		y[i] = v
	}
	return y, nil
}
