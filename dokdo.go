// Package dokdo computes cross-associations between a microbiome feature
// table and a second numeric matrix measured on the same samples, such as
// metabolite or lipid levels.
//
// The pipeline is load, normalize, correlate, correct, filter and present.
// Any error aborts it; no partial result is returned.
package dokdo

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/corr"
	"github.com/JetbluejetYJ/dokdo/frame"
	"github.com/JetbluejetYJ/dokdo/multitest"
	"github.com/JetbluejetYJ/dokdo/normalize"
)

// Log receives progress and warnings. Commands replace it.
var Log = zap.NewNop()

// Options configures a cross-association run.
type Options struct {
	Method    corr.Method
	Normalize normalize.Method
	Alpha     float64 // significance level for adjusted p-values.
	Multitest multitest.Method
	NSig      int  // minimum significant pairs per taxon and target; 0 keeps all.
	InnerJoin bool // keep only the shared samples instead of failing.

	Workers  int
	Progress func() // called once per feature.
}

// DefaultOptions returns spearman, no normalization, alpha 0.05 and fdr_bh.
func DefaultOptions() Options {
	return Options{
		Method:    corr.Spearman,
		Normalize: normalize.None,
		Alpha:     0.05,
		Multitest: multitest.FDRBH,
	}
}

// Row is one (taxon, target) association.
type Row struct {
	Taxon  string
	Target string
	Corr   float64
	PVal   float64
	AdjP   float64
}

// CrossAssociationTable correlates every feature with every target column
// and returns the associations sorted by raw p-value.
func CrossAssociationTable(src artifact.Source, target *frame.Frame, opts Options) ([]Row, error) {
	rows, err := associate(src, target, opts)
	if err != nil {
		return nil, err
	}
	rows = Filter(rows, opts.Alpha, opts.NSig)
	SortByPValue(rows)
	return rows, nil
}

// associate returns the corrected, unfiltered rows in melt order: targets
// outer, taxa inner.
func associate(src artifact.Source, target *frame.Frame, opts Options) ([]Row, error) {
	feats, err := artifact.FeatureTable(src)
	if err != nil {
		return nil, err
	}
	feats, target, err = align(feats, target, opts.InnerJoin)
	if err != nil {
		return nil, err
	}
	if feats, err = normalize.Apply(feats, opts.Normalize); err != nil {
		return nil, err
	}
	r, p, err := corr.Correlate(feats, target, opts.Method, corr.Options{
		Workers:  opts.Workers,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	rows := melt(r, p)
	pvals := make([]float64, len(rows))
	for k := range rows {
		pvals[k] = rows[k].PVal
	}
	adj, err := multitest.Correct(pvals, opts.Multitest)
	if err != nil {
		return nil, err
	}
	for k := range rows {
		rows[k].AdjP = adj[k]
	}

	Log.Debug("cross-association computed",
		zap.Int("samples", len(feats.Index)),
		zap.Int("taxa", len(feats.Columns)),
		zap.Int("targets", len(target.Columns)),
		zap.Stringer("method", opts.Method),
		zap.Stringer("normalize", opts.Normalize),
		zap.Stringer("multitest", opts.Multitest))
	return rows, nil
}

func align(feats, target *frame.Frame, inner bool) (*frame.Frame, *frame.Frame, error) {
	if target == nil {
		return nil, nil, frame.ErrAlignment
	}
	feats, target, dropped, err := frame.Align(feats, target, inner)
	if err != nil {
		return nil, nil, err
	}
	if dropped > 0 {
		Log.Warn("samples missing from one of the tables were dropped",
			zap.Int("dropped", dropped), zap.Int("kept", len(feats.Index)))
	}
	return feats, target, nil
}

func melt(r, p *frame.Frame) []Row {
	nf, nt := r.Dims()
	rows := make([]Row, 0, nf*nt)
	for j, tg := range r.Columns {
		for i, tx := range r.Index {
			rows = append(rows, Row{
				Taxon:  tx,
				Target: tg,
				Corr:   r.Data.At(i, j),
				PVal:   p.Data.At(i, j),
			})
		}
	}
	return rows
}

// SortByPValue sorts rows by ascending raw p-value, NaN last. Ties keep
// their order.
func SortByPValue(rows []Row) {
	sort.SliceStable(rows, func(a, b int) bool {
		pa, pb := rows[a].PVal, rows[b].PVal
		if math.IsNaN(pb) {
			return !math.IsNaN(pa)
		}
		return pa < pb
	})
}
