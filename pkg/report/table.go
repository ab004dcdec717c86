package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"automl/pkg/pipeline"
)

// WriteTable prints the results of a run as an aligned text table, one row
// per model and one column per metric.
func WriteTable(w io.Writer, out *pipeline.Output) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(out.Results) == 0 {
		fmt.Fprintln(tw, "no models trained")
		return tw.Flush()
	}

	names := out.Results[0].Metrics.Names()
	header := append([]string{"MODEL"}, upper(names)...)
	fmt.Fprintln(tw, strings.Join(append(header, "BEST"), "\t"))
	for _, r := range out.Results {
		row := []string{r.DisplayName}
		for _, n := range names {
			v, _ := r.Metrics.Get(n)
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		best := ""
		if r.IsBest {
			best = "*"
		}
		fmt.Fprintln(tw, strings.Join(append(row, best), "\t"))
	}
	fmt.Fprintf(tw, "\nprimary metric: %s\n", out.Job.PrimaryMetric)
	if out.Classes != nil {
		fmt.Fprintf(tw, "classes: %s\n", strings.Join(out.Classes, ", "))
	}
	return tw.Flush()
}

func upper(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToUpper(v)
	}
	return out
}
