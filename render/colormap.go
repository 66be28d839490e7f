package render

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// ErrUnknownColormap is returned for a colormap name with no equivalent.
var ErrUnknownColormap = errors.New("unknown colormap")

// colormaps maps common matplotlib/seaborn names onto Moreland's maps.
var colormaps = map[string]func() palette.ColorMap{
	"":          func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"vlag":      func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"coolwarm":  func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"rdbu":      func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"piyg":      func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"puor":      func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
	"kindlmann": func() palette.ColorMap { return moreland.Kindlmann() },
	"viridis":   func() palette.ColorMap { return moreland.ExtendedKindlmann() },
	"blackbody": func() palette.ColorMap { return moreland.BlackBody() },
	"hot":       func() palette.ColorMap { return moreland.ExtendedBlackBody() },
}

// colormap returns a palette of n colours spanning [min, max].
func colormap(name string, min, max float64, n int) (palette.Palette, error) {
	mk, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColormap, name)
	}
	cm := mk()
	cm.SetMin(min)
	cm.SetMax(max)
	return cm.Palette(n), nil
}
