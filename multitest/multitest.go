// Package multitest adjusts p-values for multiple comparisons.
//
// Method names follow the statsmodels multipletests conventions, so tables
// produced elsewhere can be reproduced by name.
package multitest

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidCorrectionMethod is returned for an unknown correction name.
var ErrInvalidCorrectionMethod = errors.New("method not recognized")

// Method is a p-value correction procedure.
type Method int

const (
	FDRBH Method = iota // Benjamini-Hochberg false discovery rate.
	FDRBY               // Benjamini-Yekutieli, valid under any dependence.
	Bonferroni
	Sidak
	Holm
	HolmSidak
	SimesHochberg
)

var methodNames = []struct {
	m     Method
	names []string
}{
	{FDRBH, []string{"fdr_bh", "fdr_i", "indep"}},
	{FDRBY, []string{"fdr_by", "fdr_n", "negcorr"}},
	{Bonferroni, []string{"bonferroni", "b"}},
	{Sidak, []string{"sidak", "s"}},
	{Holm, []string{"holm", "h"}},
	{HolmSidak, []string{"holm-sidak", "hs"}},
	{SimesHochberg, []string{"simes-hochberg", "sh"}},
}

func (m Method) String() string {
	for _, e := range methodNames {
		if e.m == m {
			return e.names[0]
		}
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Parse maps a method name or alias to a Method.
func Parse(name string) (Method, error) {
	for _, e := range methodNames {
		for _, n := range e.names {
			if n == name {
				return e.m, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: '%s'", ErrInvalidCorrectionMethod, name)
}

// Correct returns the adjusted p-values of p, in the same order. The whole
// slice is one family. NaN entries stay NaN and do not count towards the
// family size.
func Correct(p []float64, m Method) ([]float64, error) {
	adj := make([]float64, len(p))
	// order holds the positions of the non-NaN p-values, ascending by value.
	order := make([]int, 0, len(p))
	for i, v := range p {
		if math.IsNaN(v) {
			adj[i] = math.NaN()
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	n := float64(len(order))
	sorted := make([]float64, len(order))
	for k, i := range order {
		sorted[k] = p[i]
	}

	switch m {
	case Bonferroni:
		for k := range sorted {
			sorted[k] *= n
		}
	case Sidak:
		for k := range sorted {
			sorted[k] = -math.Expm1(n * math.Log1p(-sorted[k]))
		}
	case Holm:
		for k := range sorted {
			sorted[k] *= n - float64(k)
		}
		cumMax(sorted)
	case HolmSidak:
		for k := range sorted {
			sorted[k] = -math.Expm1((n - float64(k)) * math.Log1p(-sorted[k]))
		}
		cumMax(sorted)
	case SimesHochberg:
		for k := range sorted {
			sorted[k] *= n - float64(k)
		}
		revCumMin(sorted)
	case FDRBH:
		for k := range sorted {
			sorted[k] *= n / float64(k+1)
		}
		revCumMin(sorted)
	case FDRBY:
		var cm float64
		for k := 1; k <= len(sorted); k++ {
			cm += 1 / float64(k)
		}
		for k := range sorted {
			sorted[k] *= n / float64(k+1) * cm
		}
		revCumMin(sorted)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidCorrectionMethod, m)
	}

	for k, i := range order {
		adj[i] = math.Min(1, math.Max(0, sorted[k]))
	}
	return adj, nil
}

func cumMax(x []float64) {
	for k := 1; k < len(x); k++ {
		x[k] = math.Max(x[k], x[k-1])
	}
}

func revCumMin(x []float64) {
	for k := len(x) - 2; k >= 0; k-- {
		x[k] = math.Min(x[k], x[k+1])
	}
}
