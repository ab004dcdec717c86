package main

import (
	"fmt"
	"log"
	"math/rand"

	"automl/pkg/data"
	"automl/pkg/pipeline"
)

// generateBinaryData creates a simple binary classification dataset.
// Rule: if x1 * x2 > 0 → "same", else "diff". The group column is noise.
func generateBinaryData(n int, seed int64) (*data.Frame, error) {
	rnd := rand.New(rand.NewSource(seed))
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	group := make([]string, n)
	label := make([]string, n)
	groups := []string{"north", "south", "east"}
	for i := 0; i < n; i++ {
		x1[i] = rnd.Float64()*2 - 1 // [-1,1]
		x2[i] = rnd.Float64()*2 - 1
		group[i] = groups[rnd.Intn(len(groups))]
		if x1[i]*x2[i] > 0 {
			label[i] = "same"
		} else {
			label[i] = "diff"
		}
	}
	return data.New(
		data.NumericColumn("x1", x1),
		data.NumericColumn("x2", x2),
		data.TextColumn("group", group),
		data.TextColumn("label", label),
	)
}

const job = `{
	"id": "rf-demo",
	"jobName": "Random Forest Demo",
	"targetColumn": "label",
	"taskType": "classification",
	"algorithms": ["logistic_regression", "decision_tree", "random_forest"],
	"primaryMetric": "accuracy",
	"categoricalSettings": {"group": "categorize"}
}`

func main() {
	fmt.Println("=== AutoML Demo: Random Forest vs Linear Baseline ===")

	frame, err := generateBinaryData(1000, 1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Generated %d samples with columns %v.\n\n", frame.Rows(), frame.Names())

	results, jobInfo := pipeline.TrainModels(job, frame)

	fmt.Println("\nResults:")
	fmt.Println(results)
	fmt.Println("\nJob:")
	fmt.Println(jobInfo)
}
