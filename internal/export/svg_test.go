package export

import (
	"strings"
	"testing"

	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/storage"
)

func TestTrajectoryToSVG(t *testing.T) {
	pts := []dynamo.Vec2{dynamo.V(0, 0), dynamo.V(10, 5), dynamo.V(20, 0)}
	sources := []storage.SourceRecord{
		{X: 10, Y: 50, Charge: 1, Diameter: 20},
		{X: -10, Y: 50, Charge: -0.7, Diameter: 20},
	}

	svg := TrajectoryToSVG(pts, sources, 400, 300, "#00ff00")

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an SVG document")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments, got %d", strings.Count(svg, " L"))
	}
	if !strings.Contains(svg, positiveFill) || !strings.Contains(svg, negativeFill) {
		t.Error("expected both polarities drawn")
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke color not applied")
	}
}

func TestTrajectoryToSVG_Degenerate(t *testing.T) {
	if TrajectoryToSVG([]dynamo.Vec2{dynamo.V(1, 1)}, nil, 100, 100, "red") != "" {
		t.Error("expected empty output for a single point")
	}

	// identical points still produce a finite viewport
	svg := TrajectoryToSVG([]dynamo.Vec2{dynamo.V(1, 1), dynamo.V(1, 1)}, nil, 100, 100, "red")
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Errorf("non-finite coordinates in %s", svg)
	}
}
