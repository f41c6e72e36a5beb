// Package dsp provides the transform engine shared by modulation and analysis:
// a recursive radix-2 FFT, its inverse, the Hilbert transform and a one-sided
// magnitude spectrum.
package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrNotPowerOfTwo is returned when a transform is asked to work on a
// sequence whose length is not a power of two.
var ErrNotPowerOfTwo = errors.New("length is not a power of two")

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// PadPowerOfTwo returns signal zero-padded up to the next power of two.
// Padding changes the bin width of any spectrum computed from the result.
// A signal that is already a power of two in length is returned as a copy.
func PadPowerOfTwo(signal []float64) []float64 {
	padded := make([]float64, NextPowerOfTwo(len(signal)))
	copy(padded, signal)
	return padded
}

// FFT computes the discrete Fourier transform of a real sequence and returns
// the real and imaginary parts of every bin.
func FFT(signal []float64) ([]float64, []float64, error) {
	x := make([]complex128, len(signal))
	for i, v := range signal {
		x[i] = complex(v, 0)
	}

	X, err := FFTComplex(x)
	if err != nil {
		return nil, nil, err
	}

	re := make([]float64, len(X))
	im := make([]float64, len(X))
	for i, v := range X {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return re, im, nil
}

// FFTComplex computes the discrete Fourier transform of x using recursive
// decimation in time. The input is not modified.
func FFTComplex(x []complex128) ([]complex128, error) {
	if !IsPowerOfTwo(len(x)) {
		return nil, fmt.Errorf("fft of %d samples: %w", len(x), ErrNotPowerOfTwo)
	}
	return fft(x), nil
}

func fft(x []complex128) []complex128 {
	n := len(x)
	if n == 1 {
		return []complex128{x[0]}
	}

	half := n / 2
	even := make([]complex128, half)
	odd := make([]complex128, half)
	for i := 0; i < half; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}

	even = fft(even)
	odd = fft(odd)

	out := make([]complex128, n)
	for k := 0; k < half; k++ {
		twiddle := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		out[k] = even[k] + twiddle
		out[k+half] = even[k] - twiddle
	}
	return out
}

// IFFT computes the inverse transform by running the forward transform on
// the conjugated input and scaling the conjugated result by 1/n.
func IFFT(X []complex128) ([]complex128, error) {
	n := len(X)
	conj := make([]complex128, n)
	for i, v := range X {
		conj[i] = cmplx.Conj(v)
	}

	y, err := FFTComplex(conj)
	if err != nil {
		return nil, fmt.Errorf("ifft: %w", err)
	}

	scale := complex(1/float64(n), 0)
	for i, v := range y {
		y[i] = cmplx.Conj(v) * scale
	}
	return y, nil
}
