package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"automl/pkg/pipeline"
)

var ErrNoResults = errors.New("report: no trained models to plot")

var (
	barColor  = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	bestColor = color.RGBA{R: 255, G: 140, A: 255}
)

// MetricChart draws one bar per trained model for the given metric, with
// the best model's bar highlighted. Sentinel values are drawn as 0.
func MetricChart(out *pipeline.Output, metric string) (*plot.Plot, error) {
	if len(out.Results) == 0 {
		return nil, ErrNoResults
	}
	all := make(plotter.Values, len(out.Results))
	best := make(plotter.Values, len(out.Results))
	names := make([]string, len(out.Results))
	for i, r := range out.Results {
		v, ok := r.Metrics.Get(metric)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		all[i] = v
		if r.IsBest {
			best[i] = v
		}
		names[i] = r.DisplayName
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s by model", out.Job.Name, metric)
	p.Y.Label.Text = metric

	w := vg.Points(30)
	bars, err := plotter.NewBarChart(all, w)
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	hl, err := plotter.NewBarChart(best, w)
	if err != nil {
		return nil, err
	}
	hl.Color = bestColor
	hl.LineStyle.Width = vg.Length(0)
	p.Add(hl)

	p.Legend.Add("model", bars)
	p.Legend.Add("best", hl)
	p.Legend.Top = true
	p.NominalX(names...)
	return p, nil
}

// SaveChart renders the primary-metric chart of out to path. The image
// format follows the file extension (png, svg, pdf, ...).
func SaveChart(out *pipeline.Output, path string) error {
	p, err := MetricChart(out, out.Job.PrimaryMetric)
	if err != nil {
		return err
	}
	width := vg.Length(max(4, len(out.Results)+2)) * vg.Inch
	return p.Save(width, 4*vg.Inch, path)
}
