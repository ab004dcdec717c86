package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnknownFormat = errors.New("data: unknown dataset format")

// missing cell markers treated as NaN in numeric CSV columns
var missingMarkers = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true}

// ReadCSV reads a CSV document whose first record is the header. A column is
// numeric when every non-missing cell parses as a float.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read csv: %w", err)
	}
	if len(records) == 0 {
		return New()
	}
	headers := records[0]
	rows := records[1:]

	cols := make([]*Column, len(headers))
	for j, h := range headers {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = rec[j]
			}
		}
		cols[j] = parseCSVColumn(strings.TrimSpace(h), raw)
	}
	return New(cols...)
}

func parseCSVColumn(name string, raw []string) *Column {
	nums := make([]float64, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if missingMarkers[s] {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return TextColumn(name, raw)
		}
		nums[i] = v
	}
	return NumericColumn(name, nums)
}

// ReadJSON reads a column-oriented JSON object.
func ReadJSON(r io.Reader) (*Frame, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f := &Frame{}
	if err := f.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadFile picks the reader from the file extension (.csv or .json).
func LoadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(file)
	case ".json":
		return ReadJSON(file)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}
