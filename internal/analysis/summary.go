package analysis

import (
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics of a trace.
type Summary struct {
	Steps      int
	MeanSpeed  float64
	StdSpeed   float64
	MaxSpeed   float64
	PathLength float64
	Centroid   dynamo.Vec2
	// Spread is the standard deviation of distance from the centroid.
	Spread     float64
	ContactPct float64
	Rebounds   int
}

func Summarize(snaps []sim.Snapshot) Summary {
	n := len(snaps)
	if n == 0 {
		return Summary{}
	}

	speeds := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	contacts, rebounds := 0, 0
	path := 0.0
	for i, s := range snaps {
		speeds[i] = s.Speed()
		xs[i] = s.Position.X
		ys[i] = s.Position.Y
		rebounds += s.Rebounds
		if s.Contacts > 0 {
			contacts++
		}
		if i > 0 {
			path += s.Position.Dist(snaps[i-1].Position)
		}
	}

	sum := Summary{Steps: n - 1, PathLength: path, ContactPct: 100 * float64(contacts) / float64(n), Rebounds: rebounds}
	sum.MeanSpeed, sum.StdSpeed = stat.MeanStdDev(speeds, nil)
	sum.MaxSpeed = floats.Max(speeds)
	sum.Centroid = dynamo.V(stat.Mean(xs, nil), stat.Mean(ys, nil))

	radii := make([]float64, n)
	for i, s := range snaps {
		radii[i] = s.Position.Dist(sum.Centroid)
	}
	sum.Spread = stat.StdDev(radii, nil)
	if n < 2 {
		sum.StdSpeed, sum.Spread = 0, 0
	}
	return sum
}

// Speeds returns the speed of every snapshot.
func Speeds(snaps []sim.Snapshot) []float64 {
	out := make([]float64, len(snaps))
	for i, s := range snaps {
		out[i] = s.Speed()
	}
	return out
}
