package dokdo

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JetbluejetYJ/dokdo/artifact"
	"github.com/JetbluejetYJ/dokdo/corr"
	"github.com/JetbluejetYJ/dokdo/frame"
	"github.com/JetbluejetYJ/dokdo/multitest"
	"github.com/JetbluejetYJ/dokdo/normalize"
)

func mustFrame(t *testing.T, index, columns []string, rows [][]float64) *frame.Frame {
	t.Helper()
	f, err := frame.FromRows(index, columns, rows)
	require.NoError(t, err)
	return f
}

// otuAndLipids returns 8 samples, 3 taxa and 2 targets. t1 follows m1
// exactly, t2 runs against m1, t3 is noise.
func otuAndLipids(t *testing.T) (*frame.Frame, *frame.Frame) {
	samples := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	otu := mustFrame(t, samples, []string{"t1", "t2", "t3"}, [][]float64{
		{1, 80, 5}, {2, 70, 1}, {3, 60, 7}, {4, 50, 2},
		{5, 40, 6}, {6, 30, 3}, {7, 20, 8}, {8, 10, 4},
	})
	lipids := mustFrame(t, samples, []string{"m1", "m2"}, [][]float64{
		{0.1, 3}, {0.2, 1}, {0.3, 4}, {0.4, 1},
		{0.5, 5}, {0.6, 9}, {0.7, 2}, {0.8, 6},
	})
	return otu, lipids
}

func TestScenarioTwoByTwo(t *testing.T) {
	feats := mustFrame(t, []string{"s1", "s2"}, []string{"f1", "f2"}, [][]float64{{1, 2}, {3, 4}})
	target := mustFrame(t, []string{"s1", "s2"}, []string{"y"}, [][]float64{{10}, {20}})

	opts := DefaultOptions()
	opts.Method = corr.Pearson
	rows, err := CrossAssociationTable(artifact.Table{Frame: feats}, target, opts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "f1", rows[0].Taxon)
	assert.Equal(t, 1.0, rows[0].Corr)
	assert.Equal(t, 0.0, rows[0].PVal)
	assert.Equal(t, 1.0, rows[1].Corr)
}

func TestTableShapeAndOrder(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	rows, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	seen := make(map[[2]string]int)
	for k, r := range rows {
		seen[[2]string{r.Taxon, r.Target}]++
		assert.GreaterOrEqual(t, r.AdjP, r.PVal)
		if k > 0 {
			assert.LessOrEqual(t, rows[k-1].PVal, r.PVal)
		}
	}
	assert.Len(t, seen, 6)
	for pair, n := range seen {
		assert.Equal(t, 1, n, pair)
	}

	assert.Equal(t, 1.0, math.Abs(rows[0].Corr))
	assert.Equal(t, "m1", rows[0].Target)
}

func TestTableIsDeterministic(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	opts := DefaultOptions()
	opts.Normalize = normalize.CLR
	opts.Workers = 3

	first, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTableDoesNotMutateInputs(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	before := otu.Copy()
	opts := DefaultOptions()
	opts.Normalize = normalize.Log10
	_, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	require.NoError(t, err)
	assert.Equal(t, before.Data.RawMatrix().Data, otu.Data.RawMatrix().Data)
}

func TestTableErrors(t *testing.T) {
	otu, lipids := otuAndLipids(t)

	opts := DefaultOptions()
	opts.Method = corr.Method(9)
	rows, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	assert.ErrorIs(t, err, corr.ErrInvalidMethod)
	assert.Nil(t, rows)

	opts = DefaultOptions()
	opts.Multitest = multitest.Method(99)
	_, err = CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	assert.ErrorIs(t, err, multitest.ErrInvalidCorrectionMethod)

	opts = DefaultOptions()
	opts.Normalize = normalize.Method(99)
	_, err = CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	assert.ErrorIs(t, err, normalize.ErrInvalidNormalization)

	_, err = CrossAssociationTable(nil, lipids, DefaultOptions())
	assert.ErrorIs(t, err, artifact.ErrUnsupportedArtifactType)

	_, err = CrossAssociationTable(artifact.Table{Frame: otu}, nil, DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrAlignment)
}

func TestMisalignedSamples(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	partial, err := lipids.Select([]string{"s8", "s1", "s2", "s3", "s4", "s5"})
	require.NoError(t, err)

	_, err = CrossAssociationTable(artifact.Table{Frame: otu}, partial, DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrAlignment)

	opts := DefaultOptions()
	opts.InnerJoin = true
	rows, err := CrossAssociationTable(artifact.Table{Frame: otu}, partial, opts)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestFilterIntersection(t *testing.T) {
	rows := []Row{
		{Taxon: "a", Target: "x", AdjP: 0.01},
		{Taxon: "a", Target: "y", AdjP: 0.01},
		{Taxon: "a", Target: "z", AdjP: 0.50},
		{Taxon: "b", Target: "x", AdjP: 0.01},
		{Taxon: "b", Target: "y", AdjP: 0.90},
		{Taxon: "b", Target: "z", AdjP: 0.90},
		{Taxon: "c", Target: "x", AdjP: 0.02},
		{Taxon: "c", Target: "y", AdjP: 0.03},
		{Taxon: "c", Target: "z", AdjP: math.NaN()},
	}

	assert.Equal(t, rows, Filter(rows, 0.05, 0))

	// taxa: a=2 b=1 c=2; targets: x=3 y=2 z=0
	kept := Filter(rows, 0.05, 2)
	var pairs [][2]string
	for _, r := range kept {
		pairs = append(pairs, [2]string{r.Taxon, r.Target})
	}
	assert.Equal(t, [][2]string{{"a", "x"}, {"a", "y"}, {"c", "x"}, {"c", "y"}}, pairs)

	assert.Empty(t, Filter(rows, 0.05, 4))
}

func TestTableWithNSig(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	opts := DefaultOptions()
	opts.NSig = 1
	rows, err := CrossAssociationTable(artifact.Table{Frame: otu}, lipids, opts)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.Equal(t, "m1", r.Target)
		assert.Contains(t, []string{"t1", "t2"}, r.Taxon)
	}
}

func TestHeatmap(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	h, err := CrossAssociationHeatmap(artifact.Table{Frame: otu}, lipids, DefaultOptions(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, h.Targets)
	assert.Equal(t, []string{"t1", "t2", "t3"}, h.Taxa)
	r, c := h.Corr.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 1.0, h.Corr.At(0, 0))
	assert.Equal(t, -1.0, h.Corr.At(0, 1))
	assert.Equal(t, "*", h.Label(0, 0))
	assert.Equal(t, "*", h.Label(0, 1))
	assert.Empty(t, h.Fmt)

	plain, err := CrossAssociationHeatmap(artifact.Table{Frame: otu}, lipids, DefaultOptions(), false)
	require.NoError(t, err)
	assert.Nil(t, plain.Annot)
	assert.Equal(t, "1", plain.Label(0, 0))
	assert.Equal(t, "-1", plain.Label(0, 1))
}

func TestHeatmapLeavesNaNCellsBlank(t *testing.T) {
	rows := []Row{
		{Taxon: "a", Target: "x", Corr: 0.5, PVal: 0.01},
		{Taxon: "b", Target: "x", Corr: math.NaN(), PVal: math.NaN()},
		{Taxon: "b", Target: "y", Corr: -0.25, PVal: 0.2},
	}
	h := Pivot(rows, 0.05, false)
	assert.Equal(t, "0.5", h.Label(0, 0))
	assert.Equal(t, "", h.Label(0, 1))
	assert.True(t, math.IsNaN(h.Corr.At(1, 0)))
	assert.Equal(t, "", h.Label(1, 0))
	assert.Equal(t, "-0.25", h.Label(1, 1))
}

func TestHeatmapEmptyAfterFilter(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	opts := DefaultOptions()
	opts.NSig = 10
	_, err := CrossAssociationHeatmap(artifact.Table{Frame: otu}, lipids, opts, false)
	assert.Error(t, err)
}

func TestRegplot(t *testing.T) {
	otu, lipids := otuAndLipids(t)
	shuffled, err := lipids.Select([]string{"s8", "s7", "s6", "s5", "s4", "s3", "s2", "s1"})
	require.NoError(t, err)

	pair, err := CrossAssociationRegplot(artifact.Table{Frame: otu}, shuffled, "t2", "m1", false)
	require.NoError(t, err)
	assert.Equal(t, otu.Index, pair.Samples)
	assert.Equal(t, []float64{80, 70, 60, 50, 40, 30, 20, 10}, pair.X)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, pair.Y)

	_, err = CrossAssociationRegplot(artifact.Table{Frame: otu}, lipids, "nope", "m1", false)
	assert.Error(t, err)
	_, err = CrossAssociationRegplot(artifact.Table{Frame: otu}, lipids, "t1", "nope", false)
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, []Row{{Taxon: "Helicobacter", Target: "PC(40:3)", Corr: -0.5, PVal: 0.001, AdjP: 0.01}})
	require.NoError(t, err)
	assert.Equal(t, "taxon,target,corr,pval,adjp\nHelicobacter,PC(40:3),-0.5,0.001,0.01\n", buf.String())
}
