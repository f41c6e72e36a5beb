// Package analysis measures SNR and THD of a simulated signal. Both metrics
// work on a Hamming-windowed slice of the modulated signal and never modify
// the pipeline result they read from.
package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"am-simulator/internal/dsp"
)

// WindowSize is the number of samples in every analysis window.
const WindowSize = 1024

// HopSize is the distance between successive sliding windows.
const HopSize = WindowSize / 4

var (
	// ErrInsufficientSamples is returned when fewer than WindowSize samples
	// are available from the requested offset.
	ErrInsufficientSamples = errors.New("insufficient samples for analysis")

	// ErrNoFundamental is returned by THD when no fundamental with non-zero
	// magnitude could be located.
	ErrNoFundamental = errors.New("fundamental frequency not found")
)

// WindowedSpectrum applies a WindowSize Hamming window to signal starting at
// offset and returns its one-sided spectrum.
func WindowedSpectrum(signal []float64, offset int, sampleRate float64) (dsp.Spectrum, error) {
	if offset < 0 || len(signal)-offset < WindowSize {
		return dsp.Spectrum{}, fmt.Errorf("%w: need %d samples from offset %d, have %d",
			ErrInsufficientSamples, WindowSize, offset, len(signal))
	}

	windowed := dsp.ApplyWindow(signal, offset, dsp.Hamming(WindowSize))
	spec, err := dsp.ComputeSpectrum(windowed, 1/sampleRate)
	if err != nil {
		return dsp.Spectrum{}, fmt.Errorf("windowed spectrum: %w", err)
	}
	return spec, nil
}

// Frame is one step of a sliding spectrum.
type Frame struct {
	Offset   int     // first sample of the window
	Time     float64 // seconds at Offset
	Spectrum dsp.Spectrum
}

// SlidingSpectra computes windowed spectra every HopSize samples for as long
// as a full window fits in signal.
func SlidingSpectra(signal []float64, sampleRate float64) ([]Frame, error) {
	if len(signal) < WindowSize {
		return nil, fmt.Errorf("%w: need %d samples, have %d", ErrInsufficientSamples, WindowSize, len(signal))
	}

	var frames []Frame
	for offset := 0; offset+WindowSize <= len(signal); offset += HopSize {
		spec, err := WindowedSpectrum(signal, offset, sampleRate)
		if err != nil {
			return nil, err
		}
		frames = append(frames, Frame{
			Offset:   offset,
			Time:     float64(offset) / sampleRate,
			Spectrum: spec,
		})
	}
	return frames, nil
}

// dominantBin returns the index of the strongest bin with a frequency in
// [lo, hi]. ok is false when no bin in range has a positive magnitude.
func dominantBin(spec dsp.Spectrum, lo, hi float64) (idx int, ok bool) {
	first, last := -1, -1
	for i, f := range spec.Frequency {
		if f < lo {
			continue
		}
		if f > hi {
			break
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0, false
	}

	idx = first + floats.MaxIdx(spec.Magnitude[first:last+1])
	if !(spec.Magnitude[idx] > 0) {
		return 0, false
	}
	return idx, true
}
