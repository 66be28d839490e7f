// Package render draws cross-association results with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/JetbluejetYJ/dokdo"
)

// HeatmapOptions controls how a heatmap is drawn.
type HeatmapOptions struct {
	Cmap    string // colormap name, see colormaps.
	Cluster bool   // reorder rows and columns by hierarchical clustering.
	Title   string
}

// grid adapts a dense matrix to plotter.GridXYZ. Row 0 is drawn on top.
type grid struct {
	m *mat.Dense
}

func (g grid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g grid) Z(c, r int) float64 {
	nr, _ := g.m.Dims()
	return g.m.At(nr-1-r, c)
}

func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }

// Heatmap draws a targets × taxa correlation grid on a [-1, 1] diverging
// scale, with cell annotations from h.Label.
func Heatmap(h *dokdo.Heatmap, opts HeatmapOptions) (*plot.Plot, error) {
	pal, err := colormap(opts.Cmap, -1, 1, 255)
	if err != nil {
		return nil, err
	}
	nr, nc := h.Corr.Dims()

	rowOrder, colOrder := identity(nr), identity(nc)
	if opts.Cluster {
		rows := make([][]float64, nr)
		for i := range rows {
			rows[i] = mat.Row(nil, i, h.Corr)
		}
		cols := make([][]float64, nc)
		for j := range cols {
			cols[j] = mat.Col(nil, j, h.Corr)
		}
		rowOrder, colOrder = leafOrder(rows), leafOrder(cols)
	}

	m := mat.NewDense(nr, nc, nil)
	rowNames := make([]string, nr)
	colNames := make([]string, nc)
	var cells plotter.XYLabels
	for i, oi := range rowOrder {
		rowNames[nr-1-i] = h.Targets[oi]
		for j, oj := range colOrder {
			m.Set(i, j, h.Corr.At(oi, oj))
			if s := h.Label(oi, oj); s != "" {
				cells.XYs = append(cells.XYs, plotter.XY{X: float64(j), Y: float64(nr - 1 - i)})
				cells.Labels = append(cells.Labels, s)
			}
		}
	}
	for j, oj := range colOrder {
		colNames[j] = h.Taxa[oj]
	}

	p := plot.New()
	p.Title.Text = opts.Title
	hm := plotter.NewHeatMap(grid{m: m}, pal)
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Transparent
	p.Add(hm)

	if len(cells.Labels) > 0 {
		labels, err := plotter.NewLabels(cells)
		if err != nil {
			return nil, fmt.Errorf("annotations: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
	}

	p.NominalX(colNames...)
	p.NominalY(rowNames...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

func identity(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// Regplot draws the pair as a scatter plot with its least-squares line.
func Regplot(pair *dokdo.Pair) (*plot.Plot, error) {
	if len(pair.X) == 0 || len(pair.X) != len(pair.Y) {
		return nil, fmt.Errorf("regplot: %d x and %d y values", len(pair.X), len(pair.Y))
	}
	pts := make(plotter.XYs, len(pair.X))
	for i := range pts {
		pts[i].X, pts[i].Y = pair.X[i], pair.Y[i]
	}

	p := plot.New()
	p.X.Label.Text = pair.Taxon
	p.Y.Label.Text = pair.Target
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(sc)

	alpha, beta := stat.LinearRegression(pair.X, pair.Y, nil, false)
	line := plotter.NewFunction(func(x float64) float64 { return alpha + beta*x })
	line.XMin, line.XMax = minMax(pair.X)
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}

func minMax(x []float64) (lo, hi float64) {
	lo, hi = x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Save writes p to fileName; the extension picks the format (png, svg, pdf,
// eps, jpg, tif).
func Save(p *plot.Plot, fileName string, width, height vg.Length) error {
	return p.Save(width, height, fileName)
}
