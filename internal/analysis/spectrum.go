package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data,
// after removing its mean so bin 0 only reflects numerical noise.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per time unit, of the
// strongest non-DC bin. dt is the time between samples. It returns 0 when the
// series is flat or too short.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best, peak := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peak {
			best, peak = i, ps[i]
		}
	}
	if peak < 1e-9 {
		return 0
	}
	return float64(best) / (float64(len(data)) * dt)
}

type Summary struct {
	Min, Max, Mean, Std, Final float64
	Count                      int
}

// Summarize ignores NaN and Inf samples.
func Summarize(data []float64) Summary {
	var s Summary
	sum, sumSq := 0.0, 0.0
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if s.Count == 0 {
			s.Min, s.Max = v, v
		}
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		sum += v
		sumSq += v * v
		s.Final = v
		s.Count++
	}
	if s.Count == 0 {
		return s
	}

	n := float64(s.Count)
	s.Mean = sum / n
	s.Std = math.Sqrt(math.Max(0, sumSq/n-s.Mean*s.Mean))
	return s
}
