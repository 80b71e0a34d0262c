package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Plot renders ys as an ASCII line chart.
func Plot(ys []float64, width, height int, caption string) string {
	if len(ys) == 0 {
		return Subtle.Render("(no data)")
	}
	return asciigraph.Plot(ys,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption))
}

// RelativeDrift returns |y - y0| / scale per sample. scale <= 0 uses |y0|,
// falling back to absolute differences when that is zero too.
func RelativeDrift(ys []float64, scale float64) []float64 {
	out := make([]float64, len(ys))
	if len(ys) == 0 {
		return out
	}
	if scale <= 0 {
		scale = math.Abs(ys[0])
	}
	if scale == 0 {
		scale = 1
	}
	for i, y := range ys {
		out[i] = math.Abs(y-ys[0]) / scale
	}
	return out
}

// Tail returns the last n values of ys.
func Tail(ys []float64, n int) []float64 {
	if len(ys) <= n {
		return ys
	}
	return ys[len(ys)-n:]
}
