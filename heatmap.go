package dokdo

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/frame"
)

// Heatmap is a targets × taxa grid of correlation coefficients, ready to be
// drawn. Rows and columns are sorted by name.
type Heatmap struct {
	Targets []string
	Taxa    []string
	Corr    *mat.Dense

	// Annot holds a "*" for each cell whose raw p-value is <= alpha when
	// significance marking was asked for, and is nil otherwise.
	Annot [][]string
	// Fmt is the printf verb used to print coefficients in cells without
	// markers; empty when Annot is set.
	Fmt string
}

// Label returns the text drawn in cell (i, j). NaN cells are left blank.
func (h *Heatmap) Label(i, j int) string {
	if h.Annot != nil {
		return h.Annot[i][j]
	}
	v := h.Corr.At(i, j)
	if h.Fmt == "" || math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf(h.Fmt, v)
}

// CrossAssociationHeatmap runs CrossAssociationTable and pivots the result
// into a heatmap grid.
func CrossAssociationHeatmap(src artifact.Source, target *frame.Frame, opts Options, marksig bool) (*Heatmap, error) {
	rows, err := CrossAssociationTable(src, target, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no association passed the filter (alpha %g, nsig %d)", opts.Alpha, opts.NSig)
	}
	return Pivot(rows, opts.Alpha, marksig), nil
}

// Pivot lays rows out as a targets × taxa grid. Missing cells are NaN.
func Pivot(rows []Row, alpha float64, marksig bool) *Heatmap {
	targets := uniqueSorted(rows, func(r Row) string { return r.Target })
	taxa := uniqueSorted(rows, func(r Row) string { return r.Taxon })
	ti := indexOf(targets)
	xi := indexOf(taxa)

	h := &Heatmap{
		Targets: targets,
		Taxa:    taxa,
		Corr:    mat.NewDense(len(targets), len(taxa), nil),
		Fmt:     "%.2g",
	}
	pval := mat.NewDense(len(targets), len(taxa), nil)
	for i := range targets {
		for j := range taxa {
			h.Corr.Set(i, j, math.NaN())
			pval.Set(i, j, math.NaN())
		}
	}
	for _, r := range rows {
		i, j := ti[r.Target], xi[r.Taxon]
		h.Corr.Set(i, j, r.Corr)
		pval.Set(i, j, r.PVal)
	}

	if marksig {
		h.Fmt = ""
		h.Annot = make([][]string, len(targets))
		for i := range targets {
			h.Annot[i] = make([]string, len(taxa))
			for j := range taxa {
				if pval.At(i, j) <= alpha {
					h.Annot[i][j] = "*"
				}
			}
		}
	}
	return h
}

func uniqueSorted(rows []Row, key func(Row) string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}
