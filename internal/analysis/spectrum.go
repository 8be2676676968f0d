package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// minSamples is the shortest series a spectrum is computed for.
const minSamples = 8

// coefficients returns the one-sided DFT of samples with the mean removed.
func coefficients(samples []float64) (*fourier.FFT, []complex128) {
	mean := stat.Mean(samples, nil)
	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}
	fft := fourier.NewFFT(len(samples))
	return fft, fft.Coefficients(nil, centered)
}

// PowerSpectrum returns |X_k|^2 for k in [0, n/2]. The DC term is zero
// because the mean is removed first.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	_, coeffs := coefficients(samples)
	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	return power
}

// Spectrum returns the frequency in Hz of each power bin for a series
// sampled every dt seconds.
func Spectrum(samples []float64, dt float64) (freqs, power []float64, err error) {
	if len(samples) < minSamples {
		return nil, nil, ErrShortSeries
	}
	if dt <= 0 {
		return nil, nil, errors.New("analysis: dt must be positive")
	}
	fft, coeffs := coefficients(samples)
	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	return freqs, power, nil
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin,
// refined by parabolic interpolation over its neighbours.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	freqs, power, err := Spectrum(samples, dt)
	if err != nil {
		return 0, err
	}
	k := peak(power)
	if k == 0 {
		return 0, nil
	}
	return refine(freqs, power, k), nil
}

func peak(power []float64) int {
	k := 0
	for i := 1; i < len(power); i++ {
		if power[i] > power[k] {
			k = i
		}
	}
	return k
}

func refine(freqs, power []float64, k int) float64 {
	if k <= 0 || k >= len(power)-1 {
		return freqs[k]
	}
	a, b, c := power[k-1], power[k], power[k+1]
	den := a - 2*b + c
	if den == 0 {
		return freqs[k]
	}
	offset := 0.5 * (a - c) / den
	return freqs[k] + offset*(freqs[1]-freqs[0])
}

// PhaseLag returns how far b trails a as a fraction of a cycle in [0, 1),
// measured at the dominant frequency of a.
func PhaseLag(a, b []float64) (float64, error) {
	n := min(len(a), len(b))
	if n < minSamples {
		return 0, ErrShortSeries
	}
	_, ca := coefficients(a[:n])
	_, cb := coefficients(b[:n])
	power := make([]float64, len(ca))
	for i, c := range ca {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	k := peak(power)
	if k == 0 {
		return 0, errors.New("analysis: reference channel has no periodic component")
	}
	lag := (cmplx.Phase(ca[k]) - cmplx.Phase(cb[k])) / (2 * math.Pi)
	lag -= math.Floor(lag)
	if lag >= 1 {
		lag = 0
	}
	return lag, nil
}
