// Package normalize transforms a feature table before association testing.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/JetbluejetYJ/dokdo/frame"
)

// ErrInvalidNormalization is returned for an unknown normalization name.
var ErrInvalidNormalization = errors.New("incorrect normalization method")

// Method is a feature table normalization.
type Method int

const (
	None   Method = iota
	Log10         // log10(x + 1), elementwise.
	CLR           // centred log ratio of x + 1, per sample.
	ZScore        // (x - mean) / std, per sample.
)

var names = map[Method]string{
	None:   "none",
	Log10:  "log10",
	CLR:    "clr",
	ZScore: "zscore",
}

func (m Method) String() string {
	if s, ok := names[m]; ok {
		return s
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Parse maps a method name to a Method. The empty string means None.
func Parse(name string) (Method, error) {
	if name == "" {
		return None, nil
	}
	for m, s := range names {
		if s == name {
			return m, nil
		}
	}
	return None, fmt.Errorf("%w: '%s'", ErrInvalidNormalization, name)
}

// Apply returns a normalized copy of f.
func Apply(f *frame.Frame, m Method) (*frame.Frame, error) {
	var rowFn func([]float64)
	switch m {
	case None:
		return f.Copy(), nil
	case Log10:
		rowFn = log10p
	case CLR:
		rowFn = clr
	case ZScore:
		rowFn = zscore
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidNormalization, m)
	}

	out := f.Copy()
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		rowFn(out.Data.RawRowView(i))
	}
	return out, nil
}

func log10p(x []float64) {
	for i, v := range x {
		x[i] = math.Log10(v + 1)
	}
}

// clr replaces x with ln(x+1) minus its mean, i.e. the log of each
// component over the geometric mean.
func clr(x []float64) {
	floats.AddConst(1, x)
	for i, v := range x {
		x[i] = math.Log(v)
	}
	floats.AddConst(-stat.Mean(x, nil), x)
}

// zscore uses the population standard deviation.
func zscore(x []float64) {
	mean, std := stat.PopMeanStdDev(x, nil)
	for i, v := range x {
		x[i] = (v - mean) / std
	}
}
