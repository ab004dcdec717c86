package dataprep

import (
	"automl/pkg/data"
)

// Treatment is how a feature column listed in the categorical settings is
// handled.
type Treatment string

const (
	Categorize Treatment = "categorize"
	Ignore     Treatment = "ignore"
)

// Features turns the feature columns of f into a row-major matrix.
//
// Columns marked Ignore are dropped. Text columns are label-encoded whether
// or not they are marked Categorize; numeric columns pass through.
func Features(f *data.Frame, settings map[string]Treatment) ([][]float64, *Schema) {
	schema := &Schema{Encoders: make(map[string]*LabelEncoder)}
	var cols [][]float64

	for _, c := range f.Columns() {
		if settings[c.Name] == Ignore {
			schema.Dropped = append(schema.Dropped, c.Name)
			continue
		}
		switch c.Kind {
		case data.Numeric:
			cols = append(cols, c.Floats)
			schema.add(c.Name, TypeNumeric)
		default:
			enc := NewLabelEncoder()
			codes := enc.FitTransform(c.Strings)
			col := make([]float64, len(codes))
			for i, v := range codes {
				col[i] = float64(v)
			}
			cols = append(cols, col)
			schema.Encoders[c.Name] = enc
			schema.add(c.Name, TypeEncoded)
		}
	}

	X := make([][]float64, f.Rows())
	for i := range X {
		row := make([]float64, len(cols))
		for j, col := range cols {
			row[j] = col[i]
		}
		X[i] = row
	}
	return X, schema
}
