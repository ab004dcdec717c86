package report

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automl/pkg/pipeline"
)

func sampleOutput() *pipeline.Output {
	return &pipeline.Output{
		Results: []pipeline.ModelResult{
			{
				Name:        "linear_regression",
				DisplayName: "Linear Regression",
				Metrics:     pipeline.Metrics{{Name: "mae", Value: 0.5}, {Name: "r2", Value: 0.9}},
				IsBest:      true,
			},
			{
				Name:        "lasso",
				DisplayName: "Lasso",
				Metrics:     pipeline.Metrics{{Name: "mae", Value: math.Inf(1)}, {Name: "r2", Value: 0.4}},
			},
		},
		Job: pipeline.JobInfo{Name: "prices", PrimaryMetric: "mae"},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleOutput()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "MODEL") || !strings.Contains(lines[0], "MAE") || !strings.HasSuffix(strings.TrimSpace(lines[0]), "BEST") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "0.500000") || !strings.HasSuffix(lines[1], "*") {
		t.Errorf("best row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "+Inf") {
		t.Errorf("sentinel row = %q", lines[2])
	}
	if !strings.Contains(buf.String(), "primary metric: mae") {
		t.Errorf("missing primary metric line in %q", buf.String())
	}
}

func TestWriteTableClasses(t *testing.T) {
	out := sampleOutput()
	var buf bytes.Buffer
	if err := WriteTable(&buf, out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "classes:") {
		t.Errorf("regression table lists classes: %q", buf.String())
	}

	out.Classes = []string{"no", "yes"}
	buf.Reset()
	if err := WriteTable(&buf, out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "classes: no, yes") {
		t.Errorf("missing classes line in %q", buf.String())
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, &pipeline.Output{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "no models trained" {
		t.Errorf("got %q", buf.String())
	}
}

func TestMetricChart(t *testing.T) {
	p, err := MetricChart(sampleOutput(), "r2")
	if err != nil {
		t.Fatal(err)
	}
	if p.Y.Label.Text != "r2" {
		t.Errorf("y label = %q", p.Y.Label.Text)
	}
	if _, err := MetricChart(&pipeline.Output{}, "r2"); !errors.Is(err, ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestSaveChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.png")
	if err := SaveChart(sampleOutput(), path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}
