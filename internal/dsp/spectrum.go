package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	Frequency []float64 // bin centre frequencies in Hz
	Magnitude []float64 // 2*|X[i]|/n
}

// BinWidth returns the spacing between adjacent bins in Hz.
func (s Spectrum) BinWidth() float64 {
	if len(s.Frequency) < 2 {
		return 0
	}
	return s.Frequency[1] - s.Frequency[0]
}

// Len returns the number of bins.
func (s Spectrum) Len() int {
	return len(s.Magnitude)
}

// ComputeSpectrum transforms signal sampled every dt seconds and returns the
// first half of the bins. A signal whose length is not a power of two is
// zero-padded first, which narrows the bin width.
func ComputeSpectrum(signal []float64, dt float64) (Spectrum, error) {
	working := signal
	if !IsPowerOfTwo(len(signal)) {
		working = PadPowerOfTwo(signal)
	}

	re, im, err := FFT(working)
	if err != nil {
		return Spectrum{}, err
	}

	n := len(working)
	fs := 1 / dt
	half := n / 2

	spec := Spectrum{
		Frequency: make([]float64, half),
		Magnitude: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		spec.Frequency[i] = float64(i) * fs / float64(n)
		spec.Magnitude[i] = 2 * math.Hypot(re[i], im[i]) / float64(n)
	}
	return spec, nil
}

// Hamming returns a symmetric Hamming window of length n,
// 0.54 - 0.46*cos(2*pi*i/(n-1)).
func Hamming(n int) []float64 {
	return window.Hamming(n)
}

// ApplyWindow multiplies the first len(w) samples of signal starting at
// offset by w. Samples beyond the end of signal are treated as zero.
func ApplyWindow(signal []float64, offset int, w []float64) []float64 {
	out := make([]float64, len(w))
	for i := range w {
		j := offset + i
		if j >= len(signal) {
			break
		}
		out[i] = signal[j] * w[i]
	}
	return out
}
