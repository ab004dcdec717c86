package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"automl/internal/config"
	"automl/pkg/data"
	"automl/pkg/pipeline"
	"automl/pkg/report"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"job":      "job.path",
	"data":     "data.path",
	"results":  "output.results",
	"job-info": "output.job_info",
	"chart":    "output.chart",
	"quiet":    "run.quiet",
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --job job.json --data dataset.csv [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvery option can also be set in the config file or as AUTOML_<SECTION>_<KEY>,\n")
		fmt.Fprintf(os.Stderr, "for example AUTOML_OUTPUT_CHART=metrics.png.\n")
	}

	configPath := flag.String("config", "", "Path to config file (YAML)")
	flag.String("job", "", "Path to the job spec (JSON)")
	flag.String("data", "", "Path to the dataset (.csv or .json)")
	flag.String("results", "", "Where to write the model results JSON")
	flag.String("job-info", "", "Where to write the job summary JSON")
	flag.String("chart", "", "Optional primary-metric chart (.png, .svg, .pdf)")
	flag.Bool("quiet", false, "Suppress training progress output")
	flag.Parse()

	overrides := map[string]any{}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Job.Path == "" || cfg.Data.Path == "" {
		flag.Usage()
		os.Exit(2)
	}

	runID := uuid.New().String()
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", runID[:8]), 0)
	if cfg.Run.Quiet {
		logger = log.New(io.Discard, "", 0)
	}

	out, err := run(cfg, logger)
	if err != nil {
		logger.Printf("Training failed: %v", err)
		writeOutputs(cfg, "[]", "{}")
		os.Exit(1)
	}

	results, jobInfo, err := out.Encode()
	if err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
	writeOutputs(cfg, results, jobInfo)
	if best, ok := out.Best(); ok {
		logger.Printf("Best model: %s", best.DisplayName)
	}

	if cfg.Output.Table {
		if err := report.WriteTable(os.Stdout, out); err != nil {
			log.Fatalf("Failed to print results: %v", err)
		}
	}
	if cfg.Output.Chart != "" && len(out.Results) > 0 {
		if err := report.SaveChart(out, cfg.Output.Chart); err != nil {
			log.Fatalf("Failed to save chart: %v", err)
		}
		fmt.Println("Saved metric chart to", cfg.Output.Chart)
	}
}

// run loads the job and dataset and trains. A panic anywhere in the run is
// returned as an error so the caller still writes the empty outputs.
func run(cfg *config.Config, logger *log.Logger) (out *pipeline.Output, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	raw, err := os.ReadFile(cfg.Job.Path)
	if err != nil {
		return nil, err
	}
	spec, err := pipeline.ParseJobSpec(string(raw))
	if err != nil {
		return nil, err
	}
	frame, err := data.LoadFile(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	logger.Printf("Loaded dataset %s: %d rows, %d columns", cfg.Data.Path, frame.Rows(), frame.Width())

	runner := pipeline.NewRunner(
		pipeline.WithLogger(logger),
		pipeline.WithSeed(cfg.Run.Seed),
		pipeline.WithTestRatio(cfg.Run.TestRatio),
	)
	return runner.Run(spec, frame)
}

func writeOutputs(cfg *config.Config, results, jobInfo string) {
	if err := os.WriteFile(cfg.Output.Results, []byte(results+"\n"), 0o644); err != nil {
		log.Fatalf("Error creating output file: %v", err)
	}
	if err := os.WriteFile(cfg.Output.JobInfo, []byte(jobInfo+"\n"), 0o644); err != nil {
		log.Fatalf("Error creating output file: %v", err)
	}
}
