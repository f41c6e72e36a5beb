package pipeline

import (
	"errors"
	"fmt"

	"hz.tools/rf"

	"am-simulator/internal/demodulation"
	"am-simulator/internal/modulation"
	"am-simulator/internal/noise"
	"am-simulator/internal/waveform"
)

// ErrInvalidSpec is returned when a SignalSpec field is outside its range.
var ErrInvalidSpec = errors.New("invalid signal spec")

// Accepted parameter ranges (inclusive).
const (
	MinCarrierFrequency rf.Hz = 50
	MaxCarrierFrequency rf.Hz = 5000
	MinSamples                = 1024
	MaxSamples                = 16384
	MinDuration               = 0.01
	MaxDuration               = 1.0
	MinFilterAlpha            = 0.01
	MaxFilterAlpha            = 1.0
	MaxModulationIndex        = 2.0
	MaxPhaseShift             = 360.0
	MaxDutyCycle              = 100.0
	MaxNoiseAmplitude         = 1.0
)

// SignalSpec is the complete, immutable description of one simulation.
type SignalSpec struct {
	Variant          modulation.Variant
	CarrierFrequency rf.Hz
	Tones            []waveform.Tone
	ModulationIndex  float64
	PhaseShift       float64 // degrees, QAM only
	Shape            waveform.Shape
	DutyCycle        float64 // percent, Pulse only
	Noise            noise.Kind
	NoiseAmplitude   float64
	Demodulation     demodulation.Kind
	Samples          int
	Duration         float64 // seconds
	FilterAlpha      float64
}

// Tones pairs frequencies with amplitudes. The two lists must be non-empty
// and of equal length.
func Tones(frequencies, amplitudes []float64) ([]waveform.Tone, error) {
	if len(frequencies) == 0 || len(frequencies) != len(amplitudes) {
		return nil, fmt.Errorf("%w: message frequencies and amplitudes must be non-empty and match in length (%d vs %d)",
			ErrInvalidSpec, len(frequencies), len(amplitudes))
	}
	tones := make([]waveform.Tone, len(frequencies))
	for i := range frequencies {
		tones[i] = waveform.Tone{Frequency: rf.Hz(frequencies[i]), Amplitude: amplitudes[i]}
	}
	return tones, nil
}

// SampleInterval returns the time between samples in seconds.
func (s SignalSpec) SampleInterval() float64 {
	return s.Duration / float64(s.Samples)
}

// SampleRate returns the number of samples per second.
func (s SignalSpec) SampleRate() float64 {
	return float64(s.Samples) / s.Duration
}

// Validate checks every field against its documented range. Comparisons are
// written so that NaN fails them.
func (s SignalSpec) Validate() error {
	if !s.Variant.Valid() {
		return fmt.Errorf("%w: %w: %v", ErrInvalidSpec, modulation.ErrInvalidVariant, s.Variant)
	}
	if !inRange(float64(s.CarrierFrequency), float64(MinCarrierFrequency), float64(MaxCarrierFrequency)) {
		return fmt.Errorf("%w: carrier frequency %v Hz must be between %v and %v Hz",
			ErrInvalidSpec, float64(s.CarrierFrequency), float64(MinCarrierFrequency), float64(MaxCarrierFrequency))
	}
	if len(s.Tones) == 0 {
		return fmt.Errorf("%w: at least one message tone is required", ErrInvalidSpec)
	}
	for i, tone := range s.Tones {
		if !(tone.Frequency > 0) || !(tone.Amplitude > 0) {
			return fmt.Errorf("%w: tone %d (%v Hz, amplitude %v) must have positive frequency and amplitude",
				ErrInvalidSpec, i+1, float64(tone.Frequency), tone.Amplitude)
		}
	}
	if !inRange(s.ModulationIndex, 0, MaxModulationIndex) {
		return fmt.Errorf("%w: modulation index %v must be between 0 and %v", ErrInvalidSpec, s.ModulationIndex, MaxModulationIndex)
	}
	if s.Variant == modulation.QAM && !inRange(s.PhaseShift, 0, MaxPhaseShift) {
		return fmt.Errorf("%w: phase shift %v must be between 0 and %v degrees for QAM", ErrInvalidSpec, s.PhaseShift, MaxPhaseShift)
	}
	if !s.Shape.Valid() {
		return fmt.Errorf("%w: unknown waveform shape %v", ErrInvalidSpec, s.Shape)
	}
	if !inRange(s.DutyCycle, 0, MaxDutyCycle) {
		return fmt.Errorf("%w: pulse duty cycle %v must be between 0 and %v%%", ErrInvalidSpec, s.DutyCycle, MaxDutyCycle)
	}
	if !s.Noise.Valid() {
		return fmt.Errorf("%w: unknown noise type %v", ErrInvalidSpec, s.Noise)
	}
	if !inRange(s.NoiseAmplitude, 0, MaxNoiseAmplitude) {
		return fmt.Errorf("%w: noise amplitude %v must be between 0 and %v", ErrInvalidSpec, s.NoiseAmplitude, MaxNoiseAmplitude)
	}
	if !s.Demodulation.Valid() {
		return fmt.Errorf("%w: unknown demodulation type %v", ErrInvalidSpec, s.Demodulation)
	}
	if s.Samples < MinSamples || s.Samples > MaxSamples {
		return fmt.Errorf("%w: sample count %d must be between %d and %d", ErrInvalidSpec, s.Samples, MinSamples, MaxSamples)
	}
	if !inRange(s.Duration, MinDuration, MaxDuration) {
		return fmt.Errorf("%w: duration %v must be between %v and %v seconds", ErrInvalidSpec, s.Duration, MinDuration, MaxDuration)
	}
	if !inRange(s.FilterAlpha, MinFilterAlpha, MaxFilterAlpha) {
		return fmt.Errorf("%w: filter alpha %v must be between %v and %v", ErrInvalidSpec, s.FilterAlpha, MinFilterAlpha, MaxFilterAlpha)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
