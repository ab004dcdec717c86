package dataprep

import "fmt"

const (
	TypeNumeric = "numeric"
	TypeEncoded = "encoded"
)

// Schema describes the structure of a prepared feature matrix.
type Schema struct {
	FeatureNames []string
	Types        []string // TypeNumeric or TypeEncoded, aligned with FeatureNames
	Dropped      []string
	Encoders     map[string]*LabelEncoder
}

func (s *Schema) add(name, typ string) {
	s.FeatureNames = append(s.FeatureNames, name)
	s.Types = append(s.Types, typ)
}

// Describe lists each feature with its type, and the number of levels for
// encoded columns.
func (s *Schema) Describe() []string {
	out := make([]string, len(s.FeatureNames))
	for i, name := range s.FeatureNames {
		out[i] = fmt.Sprintf("%s (%s)", name, s.Types[i])
		if enc, ok := s.Encoders[name]; ok {
			out[i] = fmt.Sprintf("%s (%s, %d levels)", name, s.Types[i], len(enc.Classes))
		}
	}
	return out
}
