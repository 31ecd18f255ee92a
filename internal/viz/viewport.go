package viz

import (
	"math"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

// Viewport maps field coordinates onto canvas sub-pixels with one scale
// for both axes. Braille sub-pixels are close to square, so circles stay
// round. The field's y axis already grows downward, like the terminal's.
type Viewport struct {
	min   dynamo.Vec2
	scale float64
	pad   [2]float64
}

// NewViewport fits the square of half-size extent around center into a
// canvas of pw x ph sub-pixels.
func NewViewport(center dynamo.Vec2, extent float64, pw, ph int) Viewport {
	if extent <= 0 {
		extent = 1
	}
	scale := math.Min(float64(pw), float64(ph)) / (2 * extent)
	return Viewport{
		min:   center.Sub(dynamo.V(extent, extent)),
		scale: scale,
		pad: [2]float64{
			(float64(pw) - 2*extent*scale) / 2,
			(float64(ph) - 2*extent*scale) / 2,
		},
	}
}

func (v Viewport) ToPixel(p dynamo.Vec2) (int, int) {
	return int(math.Round((p.X-v.min.X)*v.scale + v.pad[0])),
		int(math.Round((p.Y-v.min.Y)*v.scale + v.pad[1]))
}

func (v Viewport) ToWorld(x, y int) dynamo.Vec2 {
	return dynamo.V(
		(float64(x)-v.pad[0])/v.scale+v.min.X,
		(float64(y)-v.pad[1])/v.scale+v.min.Y,
	)
}

// Length scales a field distance to sub-pixels.
func (v Viewport) Length(d float64) int { return int(math.Round(d * v.scale)) }
