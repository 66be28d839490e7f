package render

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// leafOrder clusters rows by average linkage on Euclidean distance and
// returns their indices in dendrogram leaf order. NaN counts as zero.
func leafOrder(rows [][]float64) []int {
	n := len(rows)
	if n == 0 {
		return nil
	}
	clean := make([][]float64, n)
	for i, r := range rows {
		clean[i] = make([]float64, len(r))
		for j, v := range r {
			if !math.IsNaN(v) {
				clean[i][j] = v
			}
		}
	}

	d := make([][]float64, n)
	order := make([][]int, n)
	size := make([]float64, n)
	active := make([]bool, n)
	for i := range d {
		d[i] = make([]float64, n)
		order[i] = []int{i}
		size[i] = 1
		active[i] = true
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := floats.Distance(clean[i], clean[j], 2)
			d[i][j], d[j][i] = v, v
		}
	}

	for step := 1; step < n; step++ {
		a, b := -1, -1
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && (a < 0 || d[i][j] < d[a][b]) {
					a, b = i, j
				}
			}
		}
		// Lance-Williams update for average linkage.
		for k := 0; k < n; k++ {
			if active[k] && k != a && k != b {
				v := (size[a]*d[k][a] + size[b]*d[k][b]) / (size[a] + size[b])
				d[k][a], d[a][k] = v, v
			}
		}
		order[a] = append(order[a], order[b]...)
		size[a] += size[b]
		active[b] = false
	}

	for i := range active {
		if active[i] {
			return order[i]
		}
	}
	return nil
}
