package dsp

import (
	"fmt"
)

// Hilbert returns the Hilbert transform of signal, the imaginary part of its
// analytic signal. The analytic spectrum keeps DC and Nyquist, doubles the
// positive-frequency bins and zeroes the negative-frequency bins.
//
// Signals whose length is not a power of two are zero-padded for the
// transform and the result is truncated back to len(signal).
func Hilbert(signal []float64) ([]float64, error) {
	n := len(signal)
	if n == 0 {
		return []float64{}, nil
	}

	padded := PadPowerOfTwo(signal)
	size := len(padded)

	x := make([]complex128, size)
	for i, v := range padded {
		x[i] = complex(v, 0)
	}

	X, err := FFTComplex(x)
	if err != nil {
		return nil, fmt.Errorf("hilbert: %w", err)
	}

	half := size / 2
	for i := range X {
		switch {
		case i == 0 || i == half:
		case i < half:
			X[i] *= 2
		default:
			X[i] = 0
		}
	}

	z, err := IFFT(X)
	if err != nil {
		return nil, fmt.Errorf("hilbert: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = imag(z[i])
	}
	return out, nil
}
