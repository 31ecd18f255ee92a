package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/sim"
)

// Positions returns the body position of every snapshot.
func Positions(snaps []sim.Snapshot) []dynamo.Vec2 {
	pts := make([]dynamo.Vec2, len(snaps))
	for i, s := range snaps {
		pts[i] = s.Position
	}
	return pts
}

// PhasePortrait pairs each x position with its x velocity.
func PhasePortrait(snaps []sim.Snapshot) []dynamo.Vec2 {
	pts := make([]dynamo.Vec2, len(snaps))
	for i, s := range snaps {
		pts[i] = dynamo.V(s.Position.X, s.Velocity.X)
	}
	return pts
}

// PoincareSection records (x, vx) each time the body crosses the line
// y = level moving in +y.
func PoincareSection(snaps []sim.Snapshot, level float64) []dynamo.Vec2 {
	pts := make([]dynamo.Vec2, 0)
	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1].Position.Y, snaps[i].Position.Y
		if prev < level && cur >= level {
			pts = append(pts, dynamo.V(snaps[i].Position.X, snaps[i].Velocity.X))
		}
	}
	return pts
}

// PlotASCII draws points on a width x height grid. Marks, when given, are
// drawn on top with their own rune.
func PlotASCII(points []dynamo.Vec2, marks map[dynamo.Vec2]rune, width, height int) string {
	if len(points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	extend := func(p dynamo.Vec2) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, p := range points {
		extend(p)
	}
	for p := range marks {
		extend(p)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	plot := func(p dynamo.Vec2, r rune) {
		if !p.IsValid() {
			return
		}
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = r
		}
	}
	for _, p := range points {
		plot(p, '•')
	}
	for p, r := range marks {
		plot(p, r)
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
