// Package analysis provides frequency analysis of recorded drive
// trajectories. Switching converters stamp their chopping frequency onto
// the currents, and AC supplies theirs onto the voltages; the power
// spectrum makes both visible.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the one-sided power spectrum of a uniformly
// sampled series. Bin i covers the frequency i / (n * tau) where n is the
// padded length, see Frequency.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	coeffs := fft.FFTReal(padded)

	ps := make([]float64, n/2+1)
	for i := range ps {
		mag := cmplx.Abs(coeffs[i])
		ps[i] = mag * mag / float64(n)
	}
	return ps
}

// Frequency maps a bin of a spectrum produced by PowerSpectrum to hertz
// for the given sampling period.
func Frequency(ps []float64, bin int, tau float64) float64 {
	n := (len(ps) - 1) * 2
	if n == 0 || tau == 0 {
		return 0
	}
	return float64(bin) / (float64(n) * tau)
}

// DominantFrequency returns the frequency of the strongest non-DC bin.
func DominantFrequency(ps []float64, tau float64) float64 {
	maxPower := 0.0
	maxBin := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxBin = i
		}
	}
	return Frequency(ps, maxBin, tau)
}
