package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"github.com/san-kum/fieldsim/internal/sim"
)

const (
	width       = 70
	height      = 20
	trailLength = 40
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a run observer that redraws the field as plain text.
// Terminal cells are about twice as tall as they are wide, so the x axis
// is stretched to keep sources round.
type LiveRenderer struct {
	out       io.Writer
	name      string
	sources   []physics.Source
	min       dynamo.Vec2
	sx, sy    float64
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
}

// NewLiveRenderer draws the square of half-size extent around center.
// A frameRate of zero draws every step.
func NewLiveRenderer(out io.Writer, name string, sources []physics.Source, center dynamo.Vec2, extent float64, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if extent <= 0 {
		extent = 1
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		sources:   append([]physics.Source(nil), sources...),
		min:       center.Sub(dynamo.V(extent, extent)),
		sx:        float64(width-1) / (2 * extent),
		sy:        float64(height-1) / (2 * extent),
		frameRate: frameRate,
		now:       time.Now,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, trailLength),
	}
}

func (r *LiveRenderer) OnStep(s sim.Snapshot) {
	x, y := r.cell(s.Position)
	r.trail = append(r.trail, struct{ x, y int }{x, y})
	if len(r.trail) > trailLength {
		r.trail = r.trail[1:]
	}

	if r.frameRate > 0 {
		now := r.now()
		if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = now
	}

	r.clear()
	r.drawField()
	for _, p := range r.trail {
		r.set(p.x, p.y, '.')
	}
	r.set(x, y, '@')
	r.render(s)
}

func (r *LiveRenderer) cell(p dynamo.Vec2) (int, int) {
	return int(math.Round((p.X - r.min.X) * r.sx)), int(math.Round((p.Y - r.min.Y) * r.sy))
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// drawField outlines every source and marks its center with its sign.
func (r *LiveRenderer) drawField() {
	for _, src := range r.sources {
		cx, cy := r.cell(src.Position())
		if rad := src.Radius(); rad > 0 {
			steps := max(16, int(2*math.Pi*rad*r.sx))
			for i := range steps {
				a := 2 * math.Pi * float64(i) / float64(steps)
				x, y := r.cell(src.Position().Add(dynamo.V(math.Cos(a), math.Sin(a)).Scale(rad)))
				r.set(x, y, 'o')
			}
		}
		sign := '+'
		if !src.Positive() {
			sign = '-'
		}
		r.set(cx, cy, sign)
	}
}

func (r *LiveRenderer) render(s sim.Snapshot) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d\n", r.name, s.Step))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  pos=%s speed=%.2f contacts=%d\n", s.Position, s.Speed(), s.Contacts))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
