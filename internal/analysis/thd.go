package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"am-simulator/internal/dsp"
)

const (
	thdMinFrequency = 10.0
	thdMaxFrequency = 5000.0

	// MaxHarmonic is the highest harmonic included in THD.
	MaxHarmonic = 10
)

// THDResult is a total harmonic distortion measurement.
type THDResult struct {
	Percent              float64
	Fundamental          float64 // Hz
	FundamentalMagnitude float64
	Harmonics            []float64 // magnitudes of harmonics 2..MaxHarmonic; 0 beyond Nyquist
}

// THD measures total harmonic distortion of the first WindowSize samples of
// signal.
func THD(signal []float64, sampleRate float64) (THDResult, error) {
	spec, err := WindowedSpectrum(signal, 0, sampleRate)
	if err != nil {
		return THDResult{}, err
	}
	return THDFromSpectrum(spec)
}

// THDFromSpectrum takes the strongest bin in [10, 5000] Hz as the
// fundamental and compares it with the bins nearest each harmonic, within
// one bin width.
func THDFromSpectrum(spec dsp.Spectrum) (THDResult, error) {
	idx, ok := dominantBin(spec, thdMinFrequency, thdMaxFrequency)
	if !ok {
		return THDResult{}, fmt.Errorf("%w: no spectral peak between %v and %v Hz",
			ErrNoFundamental, thdMinFrequency, thdMaxFrequency)
	}

	res := THDResult{
		Fundamental:          spec.Frequency[idx],
		FundamentalMagnitude: spec.Magnitude[idx],
		Harmonics:            make([]float64, MaxHarmonic-1),
	}

	for h := 2; h <= MaxHarmonic; h++ {
		if i, ok := nearestBin(spec, float64(h)*res.Fundamental); ok {
			res.Harmonics[h-2] = spec.Magnitude[i]
		}
	}

	fundamentalPower := res.FundamentalMagnitude * res.FundamentalMagnitude
	res.Percent = 100 * math.Sqrt(power(res.Harmonics)/fundamentalPower)
	return res, nil
}

// nearestBin returns the bin closest to target, provided it lies within one
// bin width.
func nearestBin(spec dsp.Spectrum, target float64) (int, bool) {
	resolution := spec.BinWidth()
	best, bestDist := -1, math.Inf(1)
	for i, f := range spec.Frequency {
		if d := math.Abs(f - target); d < resolution && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// power is the sum of squared magnitudes.
func power(magnitudes []float64) float64 {
	if len(magnitudes) == 0 {
		return 0
	}
	return floats.Dot(magnitudes, magnitudes)
}
