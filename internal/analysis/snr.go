package analysis

import (
	"math"

	"am-simulator/internal/dsp"
)

// SNR search range for the carrier and the assumed sideband offset.
const (
	snrMinFrequency = 50.0
	snrMaxFrequency = 5000.0
	SidebandWidth   = 50.0

	// DefaultCarrierFrequency is assumed when no bin in the search range
	// carries energy.
	DefaultCarrierFrequency = 1000.0
)

// SNRResult is a signal-to-noise measurement.
type SNRResult struct {
	DB               float64 // +Inf when no noise power, -Inf when no signal power
	CarrierFrequency float64 // dominant frequency, DefaultCarrierFrequency if none
	SignalPower      float64
	NoisePower       float64
}

// SNR measures the signal-to-noise ratio of the first WindowSize samples of
// signal.
func SNR(signal []float64, sampleRate float64) (SNRResult, error) {
	spec, err := WindowedSpectrum(signal, 0, sampleRate)
	if err != nil {
		return SNRResult{}, err
	}
	return SNRFromSpectrum(spec), nil
}

// SNRFromSpectrum splits spec into a signal band around the dominant
// frequency (and one bin around carrier +/- SidebandWidth) and a noise band
// holding everything else, then compares their powers.
func SNRFromSpectrum(spec dsp.Spectrum) SNRResult {
	res := SNRResult{CarrierFrequency: DefaultCarrierFrequency}
	if idx, ok := dominantBin(spec, snrMinFrequency, snrMaxFrequency); ok {
		res.CarrierFrequency = spec.Frequency[idx]
	}

	fc := res.CarrierFrequency
	resolution := spec.BinWidth()

	var signal, noise []float64
	for i, f := range spec.Frequency {
		inBand := math.Abs(f-fc) < SidebandWidth ||
			(f > fc && math.Abs(f-(fc+SidebandWidth)) < resolution) ||
			(f < fc && math.Abs(f-(fc-SidebandWidth)) < resolution)
		if inBand {
			signal = append(signal, spec.Magnitude[i])
		} else {
			noise = append(noise, spec.Magnitude[i])
		}
	}

	res.SignalPower = power(signal)
	res.NoisePower = power(noise)

	switch {
	case res.NoisePower == 0:
		res.DB = math.Inf(1)
	case res.SignalPower == 0:
		res.DB = math.Inf(-1)
	default:
		res.DB = 10 * math.Log10(res.SignalPower/res.NoisePower)
	}
	return res
}
