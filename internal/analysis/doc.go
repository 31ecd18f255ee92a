// Package analysis inspects recorded traces.
//
//   - [Summarize]: speed statistics, path length and spread via gonum
//   - [PowerSpectrum], [DominantPeriod]: orbit periodicity via go-dsp FFT
//   - [Divergence]: separation rate of two nearby starts
//   - [Scan]: settled distances from center across a parameter range
//   - [PhasePortrait], [PoincareSection], [PlotASCII]: terminal plots
//
// # Orbit detection
//
// A body trapped in a closed orbit has a sharp spectral peak:
//
//	period, share := analysis.DominantPeriod(xs)
//	if share > 0.5 {
//	    // periodic
//	}
package analysis
