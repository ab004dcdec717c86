package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var (
	ErrRaggedColumns   = errors.New("data: columns have different lengths")
	ErrDuplicateColumn = errors.New("data: duplicate column name")
	ErrUnknownColumn   = errors.New("data: unknown column")
	ErrNotAnObject     = errors.New("data: dataset must be a JSON object of columns")
)

// Kind tells whether a column holds numbers or text.
type Kind int

const (
	Numeric Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

// Column is one named series of a Frame. Exactly one of Floats or Strings
// is populated, depending on Kind. Missing numeric values are NaN.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// NewColumn builds a column from loosely typed values. The column is numeric
// when every value is a number, a bool or nil; otherwise every value is
// rendered as text.
func NewColumn(name string, values []any) (*Column, error) {
	floats := make([]float64, len(values))
	numeric := true
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			numeric = false
			break
		}
		floats[i] = f
	}
	if numeric {
		return &Column{Name: name, Kind: Numeric, Floats: floats}, nil
	}
	strs := make([]string, len(values))
	for i, v := range values {
		s, err := toText(v)
		if err != nil {
			return nil, fmt.Errorf("data: column %q row %d: %w", name, i, err)
		}
		strs[i] = s
	}
	return &Column{Name: name, Kind: Text, Strings: strs}, nil
}

// NumericColumn is a shortcut for a column of float values.
func NumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Floats: values}
}

// TextColumn is a shortcut for a column of string values.
func TextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: Text, Strings: values}
}

func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Text returns the column values as strings. Numeric values use the shortest
// representation that round-trips.
func (c *Column) Text() []string {
	if c.Kind == Text {
		return c.Strings
	}
	out := make([]string, len(c.Floats))
	for i, v := range c.Floats {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "None", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

// Frame is an ordered set of named, row-aligned columns.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a frame, checking names are unique and lengths agree.
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), f.rows)
		}
		f.index[c.Name] = i
		f.columns = append(f.columns, c)
	}
	return f, nil
}

// FromMap builds a frame from a column-oriented mapping. Go maps are
// unordered, so columns are laid out by sorted name.
func FromMap(m map[string][]any) (*Frame, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := NewColumn(name, m[name])
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// UnmarshalJSON decodes {"col": [v0, v1, ...], ...} keeping the key order of
// the document as the column order.
func (f *Frame) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotAnObject
	}
	var cols []*Column
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var values []any
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("data: column %q: %w", name, err)
		}
		c, err := NewColumn(name, values)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	nf, err := New(cols...)
	if err != nil {
		return err
	}
	*f = *nf
	return nil
}

func (f *Frame) Rows() int { return f.rows }

func (f *Frame) Width() int { return len(f.columns) }

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.columns))
	for i, c := range f.columns {
		out[i] = c.Name
	}
	return out
}

// Columns returns the columns in frame order. The slice is a copy; the
// columns are shared.
func (f *Frame) Columns() []*Column {
	return append([]*Column(nil), f.columns...)
}

func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Drop returns a new frame without the named column.
func (f *Frame) Drop(name string) (*Frame, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	cols := make([]*Column, 0, len(f.columns)-1)
	cols = append(cols, f.columns[:i]...)
	cols = append(cols, f.columns[i+1:]...)
	nf, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		nf.rows = f.rows
	}
	return nf, nil
}
