package stats

import (
	"errors"
	"math"
	"testing"
)

func TestStandardScalerFitOnTrainOnly(t *testing.T) {
	train := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s := NewStandardScaler()
	got, err := s.FitTransform(train)
	if err != nil {
		t.Fatal(err)
	}
	// column 0: mean 3, population std sqrt(8/3)
	std := math.Sqrt(8.0 / 3.0)
	if math.Abs(got[0][0]+2/std) > 1e-12 || math.Abs(got[2][0]-2/std) > 1e-12 {
		t.Errorf("column 0 = %v", []float64{got[0][0], got[1][0], got[2][0]})
	}
	// constant column scales by 1 around its mean
	if got[1][1] != 0 || s.Std[1] != 1 {
		t.Errorf("constant column: value %v std %v", got[1][1], s.Std[1])
	}

	test, err := s.Transform([][]float64{{3, 7}})
	if err != nil {
		t.Fatal(err)
	}
	if test[0][0] != 0 || test[0][1] != 2 {
		t.Errorf("test row = %v, want [0 2]", test[0])
	}
	if train[0][0] != 1 {
		t.Error("input was modified in place")
	}
}

func TestStandardScalerShapeMismatch(t *testing.T) {
	s := NewStandardScaler()
	if err := s.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Transform([][]float64{{1}}); !errors.Is(err, ErrShape) {
		t.Errorf("err = %v, want ErrShape", err)
	}
}

func TestUnfittedScalerPassesThrough(t *testing.T) {
	X := [][]float64{{1, 2}}
	got, err := NewStandardScaler().Transform(X)
	if err != nil || &got[0][0] != &X[0][0] {
		t.Errorf("unfitted scaler should return input unchanged")
	}
}

func TestStandardScalerIgnoresMissingValues(t *testing.T) {
	X := [][]float64{{1, 10}, {2, math.NaN()}, {3, 30}, {4, 40}}
	got, err := NewStandardScaler().FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[1][1]) {
		t.Errorf("missing cell = %v, want NaN", got[1][1])
	}
	// column 1 fitted on {10, 30, 40}: mean 80/3
	std := math.Sqrt((math.Pow(10-80.0/3, 2) + math.Pow(30-80.0/3, 2) + math.Pow(40-80.0/3, 2)) / 3)
	for _, i := range []int{0, 2, 3} {
		want := (X[i][1] - 80.0/3) / std
		if math.IsNaN(got[i][1]) || math.Abs(got[i][1]-want) > 1e-12 {
			t.Errorf("row %d column 1 = %v, want %v", i, got[i][1], want)
		}
	}
	if math.Abs(got[0][0]+got[3][0]) > 1e-12 || got[0][0] >= 0 {
		t.Errorf("column 0 = %v, %v", got[0][0], got[3][0])
	}
}

func TestStandardScalerAllMissingColumn(t *testing.T) {
	s := NewStandardScaler()
	got, err := s.FitTransform([][]float64{{math.NaN()}, {math.NaN()}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Mean[0] != 0 || s.Std[0] != 1 || !math.IsNaN(got[0][0]) {
		t.Errorf("mean %v std %v value %v", s.Mean[0], s.Std[0], got[0][0])
	}
}
