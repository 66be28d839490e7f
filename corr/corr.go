// Package corr computes pairwise correlations between the columns of two
// sample-aligned tables.
package corr

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/JetbluejetYJ/dokdo/frame"
)

// ErrInvalidMethod is returned for an unknown correlation method.
var ErrInvalidMethod = errors.New("incorrect association method")

// Method is a correlation statistic.
type Method int

const (
	Pearson Method = iota
	Spearman
)

func (m Method) String() string {
	switch m {
	case Pearson:
		return "pearson"
	case Spearman:
		return "spearman"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps "pearson" or "spearman" to a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "pearson":
		return Pearson, nil
	case "spearman":
		return Spearman, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrInvalidMethod, name)
}

// prepare turns a raw vector into the values fed to Pearson's r.
func (m Method) prepare(x []float64) []float64 {
	if m == Spearman && !floats.HasNaN(x) {
		return Rank(x)
	}
	return x
}

// PearsonR returns Pearson's r and its two-sided p-value.
// A vector with zero variance gives NaN for both.
func PearsonR(x, y []float64) (r, p float64) {
	r = pearson(x, y)
	return r, pValue(r, len(x))
}

// SpearmanR returns Spearman's rho and its two-sided p-value.
func SpearmanR(x, y []float64) (rho, p float64) {
	return PearsonR(Spearman.prepare(x), Spearman.prepare(y))
}

func pearson(x, y []float64) float64 {
	r := stat.Correlation(x, y, nil)
	// Rounding may push |r| slightly past 1.
	return math.Max(-1, math.Min(1, r))
}

// pValue tests r against zero with Student's t on n-2 degrees of freedom.
// A perfect correlation has p = 0, even on two samples.
func pValue(r float64, n int) float64 {
	switch {
	case math.IsNaN(r):
		return math.NaN()
	case math.Abs(r) == 1:
		return 0
	case n < 3:
		return math.NaN()
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/((1-r)*(1+r)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return math.Min(1, 2*dist.Survival(math.Abs(t)))
}

// Rank returns 1-based ranks, giving tied values the average of their ranks.
func Rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Options controls how Correlate runs.
type Options struct {
	Workers  int    // features correlated concurrently; <= 1 runs serially.
	Progress func() // called once per finished feature, possibly concurrently.
}

// Correlate correlates every column of features with every column of target.
// Both frames must list the same samples in the same order. The results are
// features × targets frames of coefficients and p-values.
func Correlate(features, target *frame.Frame, m Method, opts Options) (r, p *frame.Frame, err error) {
	if m != Pearson && m != Spearman {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrInvalidMethod, m)
	}
	if err := sameIndex(features, target); err != nil {
		return nil, nil, err
	}

	_, nf := features.Dims()
	_, nt := target.Dims()
	ys := make([][]float64, nt)
	for j := range ys {
		ys[j] = m.prepare(target.ColAt(j))
	}

	rData := mat.NewDense(nf, nt, nil)
	pData := mat.NewDense(nf, nt, nil)

	var g errgroup.Group
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i := 0; i < nf; i++ {
		i := i
		g.Go(func() error {
			x := m.prepare(features.ColAt(i))
			for j, y := range ys {
				rij, pij := PearsonR(x, y)
				rData.Set(i, j, rij)
				pData.Set(i, j, pij)
			}
			if opts.Progress != nil {
				opts.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if r, err = frame.New(append([]string(nil), features.Columns...), append([]string(nil), target.Columns...), rData); err != nil {
		return nil, nil, err
	}
	if p, err = frame.New(append([]string(nil), features.Columns...), append([]string(nil), target.Columns...), pData); err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

func sameIndex(a, b *frame.Frame) error {
	if len(a.Index) != len(b.Index) {
		return fmt.Errorf("%w: %d and %d samples", frame.ErrAlignment, len(a.Index), len(b.Index))
	}
	for i := range a.Index {
		if a.Index[i] != b.Index[i] {
			return fmt.Errorf("%w: row %d is %q and %q", frame.ErrAlignment, i, a.Index[i], b.Index[i])
		}
	}
	return nil
}
