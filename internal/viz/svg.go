package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/curvesim/internal/dynamo"
	"github.com/san-kum/curvesim/internal/geometry"
)

const svgMargin = 0.1

// SnapshotSVG draws the ellipse and the discs of one snapshot. radii is
// indexed like snap.Phi; discs are drawn with their arc radius as a
// Euclidean radius, which is close enough for small discs. Discs moving
// with positive phi_dot are cyan, the rest orange.
func SnapshotSVG(e geometry.Ellipse, snap dynamo.Snapshot, radii []float64, width int) string {
	if width <= 0 {
		return ""
	}
	halfW := e.A * (1 + svgMargin)
	halfH := e.B + e.A*svgMargin
	scale := float64(width) / (2 * halfW)
	height := int(2 * halfH * scale)

	// world y grows up, svg y grows down
	toSVG := func(x, y float64) (float64, float64) {
		return (x + halfW) * scale, (halfH - y) * scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	cx, cy := toSVG(0, 0)
	fmt.Fprintf(&sb, `<ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="none" stroke="#444466" stroke-width="1.5"/>
`, cx, cy, e.A*scale, e.B*scale)

	sb.WriteString("<g>\n")
	for i, phi := range snap.Phi {
		pos := e.Position(phi)
		x, y := toSVG(pos.X, pos.Y)
		r := 0.0
		if i < len(radii) {
			r = radii[i]
		}
		fill := "#ffaa00"
		if i < len(snap.PhiDot) && snap.PhiDot[i] > 0 {
			fill = "#00ccff"
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.8"/>
`, x, y, max(r*scale, 1), fill)
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, `<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">t=%.4f step=%d</text>
</svg>`, snap.Time, snap.Step)
	return sb.String()
}
