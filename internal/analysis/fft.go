package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// data after removing its mean and applying a Hann window. Any length works.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	x := make([]float64, len(data))
	copy(x, data)
	floats.AddConst(-stat.Mean(x, nil), x)
	window.Apply(x, window.Hann)

	spectrum := fft.FFTReal(x)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period in steps of the strongest non-DC
// component of data, and its share of total spectral power. A body
// settled into an orbit shows one sharp peak.
func DominantPeriod(data []float64) (period, share float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}

	bins := ps[1:]
	total := floats.Sum(bins)
	if total == 0 {
		return 0, 0
	}
	k := floats.MaxIdx(bins) + 1
	return float64(len(data)) / float64(k), bins[k-1] / total
}
