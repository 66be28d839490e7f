// Package frame holds labelled numeric tables: rows are samples, columns are
// features (taxa) or target variables.
package frame

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrAlignment is returned when two frames do not share enough samples.
var ErrAlignment = errors.New("sample index mismatch")

// Frame is a samples × columns numeric table.
type Frame struct {
	Index   []string // sample identifiers, one per row.
	Columns []string // column identifiers.
	Data    *mat.Dense
}

// New creates a frame and checks that the labels match the data shape.
func New(index, columns []string, data *mat.Dense) (*Frame, error) {
	if data == nil || len(index) == 0 || len(columns) == 0 {
		return nil, errors.New("frame: empty table")
	}
	r, c := data.Dims()
	if r != len(index) || c != len(columns) {
		return nil, fmt.Errorf("frame: data is %dx%d but labels are %dx%d", r, c, len(index), len(columns))
	}
	if dup := firstDuplicate(index); dup != "" {
		return nil, fmt.Errorf("frame: duplicate sample %q", dup)
	}
	if dup := firstDuplicate(columns); dup != "" {
		return nil, fmt.Errorf("frame: duplicate column %q", dup)
	}
	return &Frame{Index: index, Columns: columns, Data: data}, nil
}

// FromRows builds a frame from row-major values.
func FromRows(index, columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) != len(index) {
		return nil, fmt.Errorf("frame: %d rows for %d samples", len(rows), len(index))
	}
	data := make([]float64, 0, len(index)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("frame: row %q has %d values, want %d", index[i], len(row), len(columns))
		}
		data = append(data, row...)
	}
	if len(data) == 0 {
		return nil, errors.New("frame: empty table")
	}
	return New(index, columns, mat.NewDense(len(index), len(columns), data))
}

func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}

// Dims returns the number of samples and columns.
func (f *Frame) Dims() (r, c int) {
	return f.Data.Dims()
}

// Copy returns a deep copy.
func (f *Frame) Copy() *Frame {
	return &Frame{
		Index:   append([]string(nil), f.Index...),
		Columns: append([]string(nil), f.Columns...),
		Data:    mat.DenseCopyOf(f.Data),
	}
}

// T returns the transposed frame, swapping samples and columns.
func (f *Frame) T() *Frame {
	return &Frame{
		Index:   append([]string(nil), f.Columns...),
		Columns: append([]string(nil), f.Index...),
		Data:    mat.DenseCopyOf(f.Data.T()),
	}
}

// ColIndex returns the position of a column, or -1.
func (f *Frame) ColIndex(name string) int {
	for j, c := range f.Columns {
		if c == name {
			return j
		}
	}
	return -1
}

// ColAt returns a copy of column j.
func (f *Frame) ColAt(j int) []float64 {
	return mat.Col(nil, j, f.Data)
}

// Col returns a copy of the named column.
func (f *Frame) Col(name string) ([]float64, error) {
	j := f.ColIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("frame: no column %q", name)
	}
	return f.ColAt(j), nil
}

// Select returns a new frame with the given samples, in the given order.
func (f *Frame) Select(samples []string) (*Frame, error) {
	pos := make(map[string]int, len(f.Index))
	for i, s := range f.Index {
		pos[s] = i
	}
	_, c := f.Dims()
	rows := make([][]float64, len(samples))
	for k, s := range samples {
		i, ok := pos[s]
		if !ok {
			return nil, fmt.Errorf("frame: no sample %q", s)
		}
		rows[k] = mat.Row(make([]float64, c), i, f.Data)
	}
	return FromRows(append([]string(nil), samples...), append([]string(nil), f.Columns...), rows)
}

// Align orders the rows of b like those of a. Unless inner is set, both
// frames must hold exactly the same samples. With inner, only the shared
// samples are kept (in a's order) and dropped reports how many rows of a and
// b were discarded.
func Align(a, b *Frame, inner bool) (a2, b2 *Frame, dropped int, err error) {
	inB := make(map[string]bool, len(b.Index))
	for _, s := range b.Index {
		inB[s] = true
	}
	shared := make([]string, 0, len(a.Index))
	for _, s := range a.Index {
		if inB[s] {
			shared = append(shared, s)
		}
	}
	dropped = len(a.Index) + len(b.Index) - 2*len(shared)
	if dropped > 0 && !inner {
		return nil, nil, dropped, fmt.Errorf("%w: %d of %d and %d samples are shared",
			ErrAlignment, len(shared), len(a.Index), len(b.Index))
	}
	if len(shared) < 2 {
		return nil, nil, dropped, fmt.Errorf("%w: %d shared samples, need at least 2", ErrAlignment, len(shared))
	}
	if a2, err = a.Select(shared); err != nil {
		return nil, nil, dropped, err
	}
	if b2, err = b.Select(shared); err != nil {
		return nil, nil, dropped, err
	}
	return a2, b2, dropped, nil
}
