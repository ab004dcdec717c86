package model

import (
	"math"
)

// Task is the problem category a catalogue entry or metric belongs to.
type Task string

const (
	Classification Task = "classification"
	Regression     Task = "regression"
)

// ParseTask maps a job's task type to a Task. Anything other than
// "classification" is treated as regression.
func ParseTask(s string) Task {
	if Task(s) == Classification {
		return Classification
	}
	return Regression
}

// Algorithm is one entry of the model catalogue.
type Algorithm struct {
	Name string
	Task Task
	New  func(seed int64) Model
}

// Metric is one entry of the metric table. Sentinel is recorded when Score
// fails.
type Metric struct {
	Name           string
	HigherIsBetter bool
	Sentinel       float64
	Score          func(yTrue, yPred []float64) (float64, error)
}

// Better reports whether a beats b under the metric's polarity.
func (m Metric) Better(a, b float64) bool {
	if m.HigherIsBetter {
		return a > b
	}
	return a < b
}

var catalogue = []Algorithm{
	{
		Name: "logistic_regression",
		Task: Classification,
		New: func(seed int64) Model {
			return NewLogisticRegression(WithLogisticMaxIter(1000), WithLogisticRandomState(seed))
		},
	},
	{
		Name: "decision_tree",
		Task: Classification,
		New: func(seed int64) Model {
			return NewDecisionTreeClassifier(WithRandomState(seed))
		},
	},
	{
		Name: "random_forest",
		Task: Classification,
		New: func(seed int64) Model {
			return NewRandomForestClassifier(WithNEstimators(10), WithForestRandomState(seed))
		},
	},
	{
		Name: "linear_regression",
		Task: Regression,
		New: func(int64) Model {
			return NewLinearRegression()
		},
	},
	{
		Name: "lasso",
		Task: Regression,
		New: func(seed int64) Model {
			return NewLasso(WithLassoRandomState(seed))
		},
	},
	{
		Name: "decision_tree",
		Task: Regression,
		New: func(seed int64) Model {
			return NewDecisionTreeRegressor(WithRandomState(seed))
		},
	},
	{
		Name: "random_forest",
		Task: Regression,
		New: func(seed int64) Model {
			return NewRandomForestRegressor(WithNEstimators(10), WithForestRandomState(seed))
		},
	},
}

var metricTables = map[Task][]Metric{
	Classification: {
		{Name: "accuracy", HigherIsBetter: true, Sentinel: 0, Score: Accuracy},
		{Name: "precision", HigherIsBetter: true, Sentinel: 0, Score: Precision},
		{Name: "recall", HigherIsBetter: true, Sentinel: 0, Score: Recall},
		{Name: "f1", HigherIsBetter: true, Sentinel: 0, Score: F1},
	},
	Regression: {
		{Name: "mae", Sentinel: math.Inf(1), Score: MAE},
		{Name: "mse", Sentinel: math.Inf(1), Score: MSE},
		{Name: "rmse", Sentinel: math.Inf(1), Score: RMSE},
		{Name: "r2", HigherIsBetter: true, Sentinel: math.Inf(-1), Score: R2},
	},
}

// Lookup finds the catalogue entry for name under task.
func Lookup(task Task, name string) (Algorithm, bool) {
	for _, a := range catalogue {
		if a.Task == task && a.Name == name {
			return a, true
		}
	}
	return Algorithm{}, false
}

// Algorithms lists the catalogue names for task in catalogue order.
func Algorithms(task Task) []string {
	var names []string
	for _, a := range catalogue {
		if a.Task == task {
			names = append(names, a.Name)
		}
	}
	return names
}

// Metrics returns the metric table for task in its declared order.
func Metrics(task Task) []Metric {
	return append([]Metric(nil), metricTables[task]...)
}

// DefaultMetric is the primary metric used when a job names none.
func DefaultMetric(task Task) string {
	if task == Classification {
		return "accuracy"
	}
	return "mae"
}
