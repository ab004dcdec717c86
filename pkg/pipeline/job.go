package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"automl/pkg/dataprep"
	"automl/pkg/model"
)

var (
	ErrMalformedJob = errors.New("pipeline: malformed job spec")
	ErrMissingField = errors.New("pipeline: required job field missing")
)

const (
	DefaultJobID   = "unknown"
	DefaultJobName = "ML Job"
)

// JobSpec describes one training job. ID is kept as raw JSON so that any
// identifier type round-trips into the job summary unchanged.
type JobSpec struct {
	ID                  json.RawMessage     `json:"id,omitempty"`
	JobName             string              `json:"jobName,omitempty"`
	TargetColumn        string              `json:"targetColumn"`
	TaskType            string              `json:"taskType"`
	Algorithms          []string            `json:"algorithms"`
	PrimaryMetric       string              `json:"primaryMetric,omitempty"`
	NormalizeFeatures   bool                `json:"normalizeFeatures,omitempty"`
	CategoricalSettings CategoricalSettings `json:"categoricalSettings,omitempty"`
}

// CategoricalSettings maps feature columns to their treatment. Entries whose
// value is not a known treatment string are skipped.
type CategoricalSettings map[string]dataprep.Treatment

func (c *CategoricalSettings) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("categoricalSettings must be an object: %w", err)
	}
	out := CategoricalSettings{}
	for col, v := range raw {
		switch t, _ := v.(string); dataprep.Treatment(t) {
		case dataprep.Categorize, dataprep.Ignore:
			out[col] = dataprep.Treatment(t)
		}
	}
	*c = out
	return nil
}

// ParseJobSpec decodes a job document and fills in the optional fields.
func ParseJobSpec(s string) (*JobSpec, error) {
	var spec JobSpec
	if err := json.Unmarshal([]byte(s), &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec.applyDefaults()
	return &spec, nil
}

func (j *JobSpec) Validate() error {
	if j.TargetColumn == "" {
		return fmt.Errorf("%w: targetColumn", ErrMissingField)
	}
	if j.TaskType == "" {
		return fmt.Errorf("%w: taskType", ErrMissingField)
	}
	return nil
}

func (j *JobSpec) applyDefaults() {
	if len(j.ID) == 0 {
		j.ID, _ = json.Marshal(DefaultJobID)
	}
	if j.JobName == "" {
		j.JobName = DefaultJobName
	}
	if j.PrimaryMetric == "" {
		j.PrimaryMetric = model.DefaultMetric(j.Task())
	}
	if j.CategoricalSettings == nil {
		j.CategoricalSettings = CategoricalSettings{}
	}
}

// Task maps TaskType onto the catalogue task. Anything other than
// "classification" trains regressors.
func (j *JobSpec) Task() model.Task { return model.ParseTask(j.TaskType) }

// Score is one computed metric value.
type Score struct {
	Name  string
	Value float64
}

// Metrics is an ordered metric listing. It encodes as a JSON object in
// listing order with non-finite values written as null.
type Metrics []Score

func (m Metrics) Get(name string) (float64, bool) {
	for _, s := range m {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

func (m Metrics) Names() []string {
	out := make([]string, len(m))
	for i, s := range m {
		out[i] = s.Name
	}
	return out
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(s.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object back in document order. null decodes as NaN.
func (m *Metrics) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("pipeline: metrics must be a JSON object")
	}
	out := Metrics{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v *float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("pipeline: metric %q: %w", name, err)
		}
		s := Score{Name: name, Value: math.NaN()}
		if v != nil {
			s.Value = *v
		}
		out = append(out, s)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// ModelResult is the evaluation of one trained algorithm.
type ModelResult struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Metrics     Metrics `json:"metrics"`
	IsBest      bool    `json:"is_best"`
}

// JobInfo summarizes the job. PrimaryMetric is the metric actually used
// for ranking, which differs from the request after a fallback.
type JobInfo struct {
	ID            json.RawMessage `json:"id"`
	Name          string          `json:"name"`
	TaskType      string          `json:"task_type"`
	TargetColumn  string          `json:"target_column"`
	PrimaryMetric string          `json:"primary_metric"`
}

// Output is everything a run produces.
type Output struct {
	Results []ModelResult
	Job     JobInfo
	Classes []string // class names indexed by class code; nil for regression
}

// Best returns the result flagged as best, if any algorithm succeeded.
func (o *Output) Best() (*ModelResult, bool) {
	for i := range o.Results {
		if o.Results[i].IsBest {
			return &o.Results[i], true
		}
	}
	return nil, false
}

// Encode renders the results array and the job summary as JSON.
func (o *Output) Encode() (results, jobInfo string, err error) {
	rs := o.Results
	if rs == nil {
		rs = []ModelResult{}
	}
	rb, err := json.Marshal(rs)
	if err != nil {
		return "", "", err
	}
	jb, err := json.Marshal(o.Job)
	if err != nil {
		return "", "", err
	}
	return string(rb), string(jb), nil
}

// DisplayName turns an algorithm name such as "random_forest" into
// "Random Forest".
func DisplayName(algo string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(algo, "_", " "))
}
