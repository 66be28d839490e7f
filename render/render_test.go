package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"github.com/JetbluejetYJ/dokdo"
)

func TestLeafOrderGroupsNeighbours(t *testing.T) {
	rows := [][]float64{
		{0, 0},
		{10, 10},
		{0.1, 0},
		{10, 10.2},
		{0, 0.3},
	}
	order := leafOrder(rows)
	require.Len(t, order, 5)

	pos := make(map[int]int)
	for k, i := range order {
		pos[i] = k
	}
	// the two far points must sit next to each other
	assert.Equal(t, 1, abs(pos[1]-pos[3]))
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLeafOrderSmall(t *testing.T) {
	assert.Nil(t, leafOrder(nil))
	assert.Equal(t, []int{0}, leafOrder([][]float64{{math.NaN()}}))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func heatmap() *dokdo.Heatmap {
	rows := []dokdo.Row{
		{Taxon: "Helicobacter", Target: "PC(40:3)", Corr: -0.67, PVal: 0.001},
		{Taxon: "Helicobacter", Target: "TG(50:4)", Corr: 0.1, PVal: 0.6},
		{Taxon: "Moraxellaceae", Target: "PC(40:3)", Corr: -0.69, PVal: 0.0002},
		{Taxon: "Moraxellaceae", Target: "TG(50:4)", Corr: 0.05, PVal: 0.8},
		{Taxon: "Ruminococcus", Target: "PC(40:3)", Corr: 0.2, PVal: 0.3},
		{Taxon: "Ruminococcus", Target: "TG(50:4)", Corr: 0.69, PVal: 0.0003},
	}
	return dokdo.Pivot(rows, 0.05, true)
}

func TestHeatmapSaves(t *testing.T) {
	h := heatmap()
	p, err := Heatmap(h, HeatmapOptions{Cmap: "vlag", Cluster: true, Title: "lipids"})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"heatmap.png", "heatmap.svg"} {
		fileName := filepath.Join(dir, name)
		require.NoError(t, Save(p, fileName, 6*vg.Inch, 4*vg.Inch))
		info, err := os.Stat(fileName)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestHeatmapWithNaNAndNoMarks(t *testing.T) {
	h := &dokdo.Heatmap{
		Targets: []string{"m1"},
		Taxa:    []string{"a", "b"},
		Corr:    mat.NewDense(1, 2, []float64{math.NaN(), 0.5}),
		Fmt:     "%.2g",
	}
	p, err := Heatmap(h, HeatmapOptions{})
	require.NoError(t, err)
	require.NoError(t, Save(p, filepath.Join(t.TempDir(), "h.png"), 3*vg.Inch, 2*vg.Inch))
}

func TestHeatmapUnknownColormap(t *testing.T) {
	_, err := Heatmap(heatmap(), HeatmapOptions{Cmap: "jet-ish"})
	assert.ErrorIs(t, err, ErrUnknownColormap)
}

func TestRegplot(t *testing.T) {
	pair := &dokdo.Pair{
		Taxon:  "Ruminococcus gnavus et rel.",
		Target: "TG(54:5).2",
		X:      []float64{1, 2, 3, 4, 5},
		Y:      []float64{2.1, 3.9, 6.2, 8.1, 9.8},
	}
	p, err := Regplot(pair)
	require.NoError(t, err)
	assert.Equal(t, pair.Taxon, p.X.Label.Text)
	require.NoError(t, Save(p, filepath.Join(t.TempDir(), "reg.png"), 4*vg.Inch, 4*vg.Inch))

	_, err = Regplot(&dokdo.Pair{X: []float64{1}, Y: nil})
	assert.Error(t, err)
}
