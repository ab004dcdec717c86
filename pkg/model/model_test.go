package model

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestLinearRegressionRecoversCoefficients(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x1, x2 := float64(i), float64((i*7)%5)
		X = append(X, []float64{x1, x2})
		y = append(y, 2*x1-3*x2+1)
	}
	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.W[0]-2) > 1e-8 || math.Abs(m.W[1]+3) > 1e-8 || math.Abs(m.Bias()-1) > 1e-8 {
		t.Errorf("W=%v b=%v, want [2 -3] and 1", m.W, m.Bias())
	}
	pred, err := m.Predict([][]float64{{100, 1}})
	if err != nil || math.Abs(pred[0]-198) > 1e-6 {
		t.Errorf("pred = %v (%v), want 198", pred, err)
	}
}

func TestLinearRegressionCollinearFeatures(t *testing.T) {
	X := [][]float64{{1, 2, 5}, {2, 4, 5}, {3, 6, 5}, {4, 8, 5}}
	y := []float64{3, 5, 7, 9}
	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, _ := m.Predict(X)
	for i := range y {
		if math.Abs(pred[i]-y[i]) > 1e-8 {
			t.Fatalf("pred = %v, want %v", pred, y)
		}
	}
}

func TestLinearModelsRejectBadInput(t *testing.T) {
	m := NewLinearRegression()
	if _, err := m.Predict([][]float64{{1}}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("err = %v, want ErrNotFitted", err)
	}
	if err := m.Fit([][]float64{{math.NaN()}, {1}}, []float64{1, 2}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("err = %v, want ErrNonFinite", err)
	}
	if err := m.Fit([][]float64{{}, {}}, []float64{1, 2}); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("err = %v, want ErrNoFeatures", err)
	}
	if err := m.Fit([][]float64{{1}, {2}}, []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Predict([][]float64{{1, 2}}); !errors.Is(err, ErrFeatureCount) {
		t.Errorf("err = %v, want ErrFeatureCount", err)
	}
}

func TestLassoSingleFeature(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 10*float64(i))
	}
	l := NewLasso()
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	// soft-threshold(825, alpha*n=10) / 82.5
	want := 815.0 / 82.5
	if math.Abs(l.W[0]-want) > 1e-9 {
		t.Errorf("w = %v, want %v", l.W[0], want)
	}
	pred, _ := l.Predict([][]float64{{4.5}})
	if math.Abs(pred[0]-45) > 1e-9 {
		t.Errorf("prediction at the mean = %v, want 45", pred[0])
	}
}

func TestLassoLargeAlphaZeroesWeights(t *testing.T) {
	X := [][]float64{{1, 0}, {2, 1}, {3, 0}, {4, 1}}
	y := []float64{1, 2, 3, 4}
	l := NewLasso(WithAlpha(100))
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for _, w := range l.W {
		if w != 0 {
			t.Fatalf("W = %v, want zeros", l.W)
		}
	}
	pred, _ := l.Predict([][]float64{{10, 10}})
	if pred[0] != 2.5 {
		t.Errorf("pred = %v, want mean 2.5", pred[0])
	}
}

func TestLogisticRegressionBinary(t *testing.T) {
	X := [][]float64{{-3}, {-2}, {-1}, {1}, {2}, {3}}
	y := []float64{0, 0, 0, 1, 1, 1}
	m := NewLogisticRegression(WithLogisticMaxIter(1000))
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := m.Predict([][]float64{{-2.5}, {2.5}})
	if err != nil {
		t.Fatal(err)
	}
	if pred[0] != 0 || pred[1] != 1 {
		t.Errorf("pred = %v, want [0 1]", pred)
	}
	proba, _ := m.PredictProba([][]float64{{0.3}})
	if math.Abs(proba[0][0]+proba[0][1]-1) > 1e-12 {
		t.Errorf("probabilities %v do not sum to 1", proba[0])
	}
}

func TestLogisticRegressionMulticlass(t *testing.T) {
	centers := [][]float64{{0, 0}, {6, 6}, {12, 0}}
	var X [][]float64
	var y []float64
	offsets := [][]float64{{0.5, 0}, {-0.5, 0}, {0, 0.5}, {0, -0.5}}
	for k, c := range centers {
		for _, o := range offsets {
			X = append(X, []float64{c[0] + o[0], c[1] + o[1]})
			y = append(y, float64(k))
		}
	}
	m := NewLogisticRegression(WithLogisticMaxIter(1000))
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, _ := m.Predict(centers)
	if !reflect.DeepEqual(pred, []float64{0, 1, 2}) {
		t.Errorf("pred = %v, want [0 1 2]", pred)
	}
}

func TestLogisticRegressionSingleClass(t *testing.T) {
	err := NewLogisticRegression().Fit([][]float64{{1}, {2}}, []float64{1, 1})
	if !errors.Is(err, ErrSingleClass) {
		t.Errorf("err = %v, want ErrSingleClass", err)
	}
}

func stepData() ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		X = append(X, []float64{float64(i), float64(i % 3)})
		if i >= 20 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func TestDecisionTreeClassifierFitsSeparableData(t *testing.T) {
	X, y := stepData()
	tree := NewDecisionTreeClassifier(WithRandomState(42))
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, _ := tree.Predict(X)
	if !reflect.DeepEqual(pred, y) {
		t.Errorf("training predictions differ from labels")
	}
	if tree.Depth() != 1 {
		t.Errorf("depth = %d, want 1", tree.Depth())
	}
	proba, _ := tree.PredictProba([][]float64{{35, 0}})
	if proba[0][1] != 1 {
		t.Errorf("proba = %v, want [0 1]", proba[0])
	}
}

func TestDecisionTreeHandlesMissingValues(t *testing.T) {
	X := [][]float64{{1}, {2}, {math.NaN()}, {10}, {11}, {math.NaN()}}
	y := []float64{0, 0, 0, 1, 1, 1}
	tree := NewDecisionTreeClassifier(WithRandomState(1))
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := tree.Predict([][]float64{{1.5}, {10.5}, {math.NaN()}})
	if err != nil {
		t.Fatal(err)
	}
	if pred[0] != 0 || pred[1] != 1 {
		t.Errorf("pred = %v, want 0 and 1 for the observed values", pred)
	}
}

func TestDecisionTreeRegressor(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{1, 1, 1, 5, 5, 7}
	tree := NewDecisionTreeRegressor(WithMaxDepth(1), WithRandomState(0))
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, _ := tree.Predict([][]float64{{2}, {5}})
	if pred[0] != 1 || math.Abs(pred[1]-17.0/3.0) > 1e-12 {
		t.Errorf("pred = %v, want [1 5.667]", pred)
	}

	full := NewDecisionTreeRegressor()
	_ = full.Fit(X, y)
	got, _ := full.Predict(X)
	if !reflect.DeepEqual(got, y) {
		t.Errorf("unbounded tree should fit training data, got %v", got)
	}
}

func TestDecisionTreeRejectsBadLabels(t *testing.T) {
	err := NewDecisionTreeClassifier().Fit([][]float64{{1}, {2}}, []float64{0, 0.5})
	if !errors.Is(err, ErrBadLabel) {
		t.Errorf("err = %v, want ErrBadLabel", err)
	}
}

func TestRandomForestIsDeterministic(t *testing.T) {
	X, y := stepData()
	a := NewRandomForestClassifier(WithNEstimators(10), WithForestRandomState(42))
	b := NewRandomForestClassifier(WithNEstimators(10), WithForestRandomState(42))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pa, _ := a.PredictProba(X)
	pb, _ := b.PredictProba(X)
	if !reflect.DeepEqual(pa, pb) {
		t.Fatal("same seed produced different forests")
	}

	pred, _ := a.Predict(X)
	acc, _ := Accuracy(y, pred)
	if acc < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9", acc)
	}
}

func TestRandomForestRegressor(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, float64(i/10)*10)
	}
	rf := NewRandomForestRegressor(WithNEstimators(10), WithForestRandomState(42))
	if err := rf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := rf.Predict([][]float64{{5}, {25}})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pred[0]) > 5 || math.Abs(pred[1]-20) > 5 {
		t.Errorf("pred = %v, want about [0 20]", pred)
	}
	if _, err := NewRandomForestRegressor().Predict(X); !errors.Is(err, ErrNotFitted) {
		t.Errorf("err = %v, want ErrNotFitted", err)
	}
}

func TestDecisionTreeRegressorSplitsTinyStep(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		X = append(X, []float64{float64(i)})
		if i >= 25 {
			y = append(y, 1e-6)
		} else {
			y = append(y, 0)
		}
	}
	tree := NewDecisionTreeRegressor(WithMaxDepth(1))
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if tree.Depth() != 1 {
		t.Fatalf("depth = %d, want a split on the step", tree.Depth())
	}
	pred, _ := tree.Predict([][]float64{{10}, {40}})
	if math.Abs(pred[0]) > 1e-15 || math.Abs(pred[1]-1e-6) > 1e-15 {
		t.Errorf("pred = %v, want [0 1e-06]", pred)
	}
}

func TestDecisionTreeRegressorLargeOffset(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1e9, 1e9, 1e9 + 1, 1e9 + 1}
	tree := NewDecisionTreeRegressor()
	if err := tree.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, _ := tree.Predict(X)
	for i := range y {
		if math.Abs(pred[i]-y[i]) > 1e-6 {
			t.Fatalf("pred = %v, want %v", pred, y)
		}
	}
}

func TestLogisticRegressionSmallCShrinksWeights(t *testing.T) {
	X := [][]float64{{-3}, {-2}, {-1}, {1}, {2}, {3}}
	y := []float64{0, 0, 0, 1, 1, 1}
	norm := func(m *LogisticRegression) float64 {
		s := 0.0
		for _, row := range m.W {
			s += row[0] * row[0]
		}
		return s
	}
	loose := NewLogisticRegression(WithLogisticMaxIter(1000))
	strong := NewLogisticRegression(WithC(1e-3), WithLogisticMaxIter(1000))
	if err := loose.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := strong.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if norm(strong) >= norm(loose) {
		t.Errorf("||W||² with C=1e-3 is %v, want below %v", norm(strong), norm(loose))
	}
}

func TestLassoTighterTolRunsLonger(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		a := float64(i)
		X = append(X, []float64{a, a + float64(i%4)})
		y = append(y, 3*a-2*float64(i%4)+1)
	}
	loose := NewLasso(WithAlpha(0.01), WithTol(0.1))
	tight := NewLasso(WithAlpha(0.01), WithTol(1e-10), WithMaxIter(100000))
	if err := loose.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := tight.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if tight.NIter < loose.NIter {
		t.Errorf("tight tolerance stopped after %d iterations, loose after %d", tight.NIter, loose.NIter)
	}
	mean, ss := 0.0, 0.0
	for _, v := range y {
		mean += v / float64(len(y))
	}
	for _, v := range y {
		ss += (v - mean) * (v - mean)
	}
	if tight.NIter < tight.MaxIter && tight.Gap >= 1e-10*ss {
		t.Errorf("gap = %v, want below %v", tight.Gap, 1e-10*ss)
	}
}

func TestRandomForestWithoutBootstrap(t *testing.T) {
	X, y := stepData()
	rf := NewRandomForestClassifier(WithNEstimators(5), WithBootstrap(false), WithForestMaxFeatures(2), WithForestRandomState(3))
	if err := rf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for i, tree := range rf.Trees {
		pred, _ := tree.Predict(X)
		if !reflect.DeepEqual(pred, y) || tree.Depth() != 1 {
			t.Fatalf("tree %d differs from a single tree on the full data", i)
		}
	}
}
