// Package analysis provides post-run analysis of cloth series and
// simulations.
//
//   - [PowerSpectrum] and [DominantFrequency]: sway frequency of a sampled series
//   - [Summarize]: min, max, mean, deviation and final value of a series
//   - [NewPhasePortrait]: trace of the tracked particle, rendered as ASCII
//   - [Sweep]: parameter sweep recording a settled measure per value
//   - [Divergence]: separation growth between a run and a perturbed twin
//
// # Sway
//
// The bottom-centre trace of a pinned cloth swings back and forth after a cut
// or a gust. Its dominant frequency is read off the spectrum:
//
//	freq := analysis.DominantFrequency(series["trace_x"], dt*float64(sampleEvery))
package analysis
