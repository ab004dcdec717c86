package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"automl/pkg/data"
	"automl/pkg/dataprep"
	"automl/pkg/loader"
	"automl/pkg/model"
	"automl/pkg/stats"
)

var (
	ErrNoData        = errors.New("pipeline: no dataset")
	ErrUnknownTarget = errors.New("pipeline: target column not in dataset")
	ErrPanic         = errors.New("pipeline: panic during training")
)

// Runner trains and scores the catalogue algorithms a job asks for.
type Runner struct {
	logger    *log.Logger
	seed      int64
	testRatio float64
}

type Option func(*Runner)

func WithLogger(l *log.Logger) Option { return func(r *Runner) { r.logger = l } }
func WithSeed(s int64) Option         { return func(r *Runner) { r.seed = s } }
func WithTestRatio(f float64) Option  { return func(r *Runner) { r.testRatio = f } }

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:    log.New(os.Stdout, "", 0),
		seed:      loader.DefaultSeed,
		testRatio: loader.DefaultTestRatio,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// TrainModels runs a job with the default runner and returns the results
// array and job summary as JSON. Any failure outside the per-algorithm loop
// yields "[]" and "{}".
func TrainModels(jobJSON string, frame *data.Frame) (string, string) {
	return NewRunner().TrainJSON(jobJSON, frame)
}

// TrainJSON is TrainModels on a configured runner.
func (r *Runner) TrainJSON(jobJSON string, frame *data.Frame) (results, jobInfo string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("Training failed: %v", rec)
			results, jobInfo = "[]", "{}"
		}
	}()
	spec, err := ParseJobSpec(jobJSON)
	if err != nil {
		r.logger.Printf("Training failed: %v", err)
		return "[]", "{}"
	}
	out, err := r.Run(spec, frame)
	if err != nil {
		r.logger.Printf("Training failed: %v", err)
		return "[]", "{}"
	}
	results, jobInfo, err = out.Encode()
	if err != nil {
		r.logger.Printf("Training failed: %v", err)
		return "[]", "{}"
	}
	return results, jobInfo
}

// prepared is an encoded, split and optionally scaled dataset.
type prepared struct {
	XTrain, XTest [][]float64
	YTrain, YTest []float64
	classes       []string
	schema        *dataprep.Schema
}

func (r *Runner) prepare(spec *JobSpec, task model.Task, frame *data.Frame) (*prepared, error) {
	if frame == nil {
		return nil, ErrNoData
	}
	target, ok := frame.Column(spec.TargetColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, spec.TargetColumn)
	}
	features, err := frame.Drop(spec.TargetColumn)
	if err != nil {
		return nil, err
	}

	p := &prepared{}
	var y []float64
	if task == model.Classification {
		y, p.classes, err = dataprep.EncodeTarget(target)
	} else {
		y, err = dataprep.RegressionTarget(target)
	}
	if err != nil {
		return nil, err
	}

	var X [][]float64
	X, p.schema = dataprep.Features(features, spec.CategoricalSettings)
	p.XTrain, p.XTest, p.YTrain, p.YTest, err = loader.TrainTestSplit(X, y, r.testRatio, r.seed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// runState is the mutable state of one run: the primary metric, which may
// fall back to another metric, and the best result so far.
type runState struct {
	table   []model.Metric
	primary string
	bestIdx int
	best    float64
}

func newRunState(task model.Task, primary string) *runState {
	return &runState{table: model.Metrics(task), primary: primary, bestIdx: -1}
}

func (s *runState) polarity() model.Metric {
	for _, m := range s.table {
		if m.Name == s.primary {
			return m
		}
	}
	return s.table[0]
}

// observe ranks result i by the primary metric, switching the primary
// metric to the first computed one when the requested metric is absent.
func (s *runState) observe(i int, m Metrics, logger *log.Logger) float64 {
	v, ok := m.Get(s.primary)
	if !ok {
		logger.Printf("  WARNING: primary metric %q not found in calculated metrics", s.primary)
		logger.Printf("  Available metrics: %v", m.Names())
		s.primary = m[0].Name
		v = m[0].Value
		logger.Printf("  Using fallback primary metric: %s", s.primary)
	}
	if s.bestIdx < 0 || s.polarity().Better(v, s.best) {
		s.bestIdx = i
		s.best = v
	}
	return v
}

// Run trains every requested algorithm and ranks the successful ones.
func (r *Runner) Run(spec *JobSpec, frame *data.Frame) (*Output, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	job := *spec
	job.applyDefaults()
	task := job.Task()

	p, err := r.prepare(&job, task, frame)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("Training data shape: X_train=(%d, %d), y_train=(%d,)", len(p.XTrain), width(p.XTrain), len(p.YTrain))
	r.logger.Printf("Test data shape: X_test=(%d, %d), y_test=(%d,)", len(p.XTest), width(p.XTest), len(p.YTest))
	r.logger.Printf("Features: %s, dropped: %v", strings.Join(p.schema.Describe(), ", "), p.schema.Dropped)
	r.logger.Printf("Target column %q - unique values in y_test: %v", job.TargetColumn, p.unique(p.YTest))
	r.logger.Printf("Task type: %s, Primary metric: %s", job.TaskType, job.PrimaryMetric)
	r.logger.Printf("Selected algorithms: %v", job.Algorithms)

	if job.NormalizeFeatures {
		r.logger.Println("Applying feature normalization...")
		p.XTrain, p.XTest, err = NewPipeline(stats.NewStandardScaler()).Apply(p.XTrain, p.XTest)
		if err != nil {
			return nil, err
		}
	} else {
		r.logger.Println("No feature normalization applied")
	}

	state := newRunState(task, job.PrimaryMetric)
	results := []ModelResult{}
	for _, name := range job.Algorithms {
		algo, ok := model.Lookup(task, name)
		if !ok {
			r.logger.Printf("Algorithm %q not found in catalogue. Available: %v", name, model.Algorithms(task))
			continue
		}
		display := DisplayName(name)
		r.logger.Printf("\nTraining %s...", display)
		metrics, err := r.train(algo, p)
		if err != nil {
			r.logger.Printf("Failed to train %s: %v", display, err)
			continue
		}
		score := state.observe(len(results), metrics, r.logger)
		r.logger.Printf("  Primary metric %q value: %.6f", state.primary, score)
		results = append(results, ModelResult{Name: name, DisplayName: display, Metrics: metrics})
		r.logger.Printf("Completed %s - Primary metric (%s): %.6f", display, state.primary, score)
	}

	r.logger.Printf("\nTRAINING SUMMARY:")
	r.logger.Printf("   Total models trained: %d", len(results))
	if len(results) > 0 {
		criterion := "Lower is better"
		if state.polarity().HigherIsBetter {
			criterion = "Higher is better"
		}
		r.logger.Printf("   Primary metric used for comparison: %s", state.primary)
		r.logger.Printf("   Best model selection criteria: %s", criterion)
		results[state.bestIdx].IsBest = true
	}

	return &Output{
		Results: results,
		Job: JobInfo{
			ID:            job.ID,
			Name:          job.JobName,
			TaskType:      job.TaskType,
			TargetColumn:  job.TargetColumn,
			PrimaryMetric: state.primary,
		},
		Classes: p.classes,
	}, nil
}

// train fits one algorithm and scores it on the test partition. Metric
// failures record the metric's sentinel; fit, predict and panics fail the
// algorithm.
func (r *Runner) train(algo model.Algorithm, p *prepared) (metrics Metrics, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, rec, debug.Stack())
		}
	}()

	m := algo.New(r.seed)
	r.logger.Printf("  Model: %s", strings.TrimPrefix(fmt.Sprintf("%T", m), "*model."))
	r.logger.Printf("  Training on %d samples with %d features", len(p.XTrain), width(p.XTrain))
	if err := m.Fit(p.XTrain, p.YTrain); err != nil {
		return nil, err
	}
	r.logger.Println("  Model training completed")

	pred, err := m.Predict(p.XTest)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("  Predictions shape: (%d,)", len(pred))
	r.logger.Printf("  First 10 actual values: %v", p.labels(head(p.YTest, 10)))
	r.logger.Printf("  First 10 predicted values: %v", p.labels(head(pred, 10)))
	if p.classes != nil {
		r.logger.Printf("  Actual class distribution: %s", p.distribution(p.YTest))
		r.logger.Printf("  Predicted class distribution: %s", p.distribution(pred))
	} else {
		r.logger.Printf("  Actual values range: %.3f to %.3f", floats.Min(p.YTest), floats.Max(p.YTest))
		r.logger.Printf("  Predicted values range: %.3f to %.3f", floats.Min(pred), floats.Max(pred))
	}

	for _, metric := range model.Metrics(algo.Task) {
		v, err := metric.Score(p.YTest, pred)
		if err != nil {
			r.logger.Printf("  Error calculating %s: %v", metric.Name, err)
			v = metric.Sentinel
		}
		metrics = append(metrics, Score{Name: metric.Name, Value: v})
	}
	r.logger.Printf("  ALL METRICS for %s:", DisplayName(algo.Name))
	for _, s := range metrics {
		r.logger.Printf("    %s: %.6f", s.Name, s.Value)
	}
	return metrics, nil
}

func width(X [][]float64) int {
	if len(X) == 0 {
		return 0
	}
	return len(X[0])
}

func head(v []float64, n int) []float64 {
	return v[:min(n, len(v))]
}

// labels renders targets for logging, mapping class codes back to names.
func (p *prepared) labels(v []float64) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = p.label(x)
	}
	return out
}

func (p *prepared) label(x float64) string {
	if c := int(x); p.classes != nil && c >= 0 && c < len(p.classes) && float64(c) == x {
		return p.classes[c]
	}
	return fmt.Sprintf("%g", x)
}

func (p *prepared) unique(v []float64) []string {
	seen := map[float64]bool{}
	var u []float64
	for _, x := range v {
		if !seen[x] {
			seen[x] = true
			u = append(u, x)
		}
	}
	sort.Float64s(u)
	return p.labels(u)
}

// distribution counts each value, in sorted order.
func (p *prepared) distribution(v []float64) string {
	counts := map[float64]int{}
	for _, x := range v {
		counts[x]++
	}
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", p.label(k), counts[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
