package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
)

// ScanPoint holds the distinct distances from the field center the body
// visited for one parameter value.
type ScanPoint struct {
	Param  float64
	Values []float64
}

// Scan runs the configuration once per value, with apply setting the
// parameter, and records where the body settles after the transient.
// It is the field analogue of a bifurcation diagram: a single value means
// the body rests, a band means it orbits.
func Scan(ctx context.Context, base *config.Config, apply func(*config.Config, float64), values []float64, transient, record int) ([]ScanPoint, error) {
	if transient < 0 || record <= 0 {
		return nil, fmt.Errorf("scan: invalid window %d+%d", transient, record)
	}

	results := make([]ScanPoint, 0, len(values))
	for _, v := range values {
		cfg := base.Clone()
		cfg.Steps = transient + record
		apply(cfg, v)

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, fmt.Errorf("scan at %v: %w", v, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan at %v: %w", v, err)
		}

		// quantize to find distinct values
		seen := make(map[int]bool)
		vals := make([]float64, 0, 64)
		center := cfg.Center()
		for _, s := range res.Snapshots {
			if s.Step <= transient {
				continue
			}
			d := s.Position.Dist(center)
			key := int(d * 10)
			if !seen[key] {
				seen[key] = true
				vals = append(vals, d)
			}
		}
		results = append(results, ScanPoint{Param: v, Values: vals})
	}
	return results, nil
}

// ScanToASCII draws scan data with the parameter on the horizontal axis.
func ScanToASCII(data []ScanPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 1 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
