package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/storage"
)

const (
	positiveFill = "#ff5555"
	negativeFill = "#5599ff"
)

// TrajectoryToSVG draws the body path over the field sources. Coordinates
// keep the field's screen orientation (y grows downward) and one scale for
// both axes so sources stay round.
func TrajectoryToSVG(points []dynamo.Vec2, sources []storage.SourceRecord, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	extend := func(x, y, r float64) {
		minX, maxX = math.Min(minX, x-r), math.Max(maxX, x+r)
		minY, maxY = math.Min(minY, y-r), math.Max(maxY, y+r)
	}
	for _, p := range points {
		if p.IsValid() {
			extend(p.X, p.Y, 0)
		}
	}
	for _, s := range sources {
		extend(s.X, s.Y, s.Diameter/2)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	scale := math.Min(float64(width)/(rangeX*1.1), float64(height)/(rangeY*1.1))

	tx := func(x float64) float64 { return (x - minX) * scale }
	ty := func(y float64) float64 { return (y - minY) * scale }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, s := range sources {
		fill, sign := positiveFill, "+"
		if s.Charge < 0 {
			fill, sign = negativeFill, "−"
		}
		opacity := 0.5 + 0.5*math.Min(math.Abs(s.Charge)/5, 1)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.2f"/>
<text x="%.1f" y="%.1f" fill="#ffffff" text-anchor="middle" dominant-baseline="central">%s</text>
`, tx(s.X), ty(s.Y), s.Diameter/2*scale, fill, opacity, tx(s.X), ty(s.Y), sign)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor)
	move := true
	for _, p := range points {
		if !p.IsValid() {
			move = true
			continue
		}
		if move {
			fmt.Fprintf(&sb, "M%.1f,%.1f", tx(p.X), ty(p.Y))
			move = false
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", tx(p.X), ty(p.Y))
		}
	}
	sb.WriteString(`"/>
`)

	last := points[len(points)-1]
	if last.IsValid() {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="#ffffff"/>
`, tx(last.X), ty(last.Y))
	}
	sb.WriteString("</svg>")
	return sb.String()
}
