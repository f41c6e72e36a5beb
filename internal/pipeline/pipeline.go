// Package pipeline turns a SignalSpec into a complete simulated signal:
// message synthesis, noise, modulation, optional demodulation and the
// one-sided spectrum of the modulated signal.
package pipeline

import (
	"fmt"
	"math"

	"am-simulator/internal/demodulation"
	"am-simulator/internal/dsp"
	"am-simulator/internal/modulation"
	"am-simulator/internal/noise"
	"am-simulator/internal/waveform"
)

// Result holds every sequence produced by one Build. All full-length slices
// share indexing: sample i of each corresponds to Time[i].
type Result struct {
	Spec       SignalSpec
	SampleRate float64

	Time      []float64
	Message   []float64
	Carrier   []float64
	Modulated []float64

	// Demodulated is nil when Spec.Demodulation is None.
	Demodulated []float64

	// Frequency and Spectrum hold the first Samples/2 bins of the spectrum of
	// Modulated. A Samples count that is not a power of two is zero-padded to
	// the next power of two first, so the bins are narrower than
	// SampleRate/Samples and the last one falls short of Nyquist (3000
	// samples pad to 4096 and stop near 0.37 of the sample rate).
	Frequency []float64
	Spectrum  []float64
}

// Len returns the number of time-domain samples.
func (r *Result) Len() int {
	return len(r.Time)
}

// Demodulation returns the demodulated signal and whether one was computed.
func (r *Result) Demodulation() ([]float64, bool) {
	return r.Demodulated, r.Demodulated != nil
}

// Row returns time, message, carrier, modulated and demodulated for sample
// i. The demodulated column is 0 when no demodulation was computed.
func (r *Result) Row(i int) [5]float64 {
	row := [5]float64{r.Time[i], r.Message[i], r.Carrier[i], r.Modulated[i], 0}
	if r.Demodulated != nil {
		row[4] = r.Demodulated[i]
	}
	return row
}

// Builder runs the pipeline. It owns the noise generator, so a Builder must
// not be shared between goroutines.
type Builder struct {
	noise *noise.Generator
}

// Option configures a Builder.
type Option func(*Builder)

// WithSeed makes noise reproducible by seeding the builder's generator.
func WithSeed(seed int64) Option {
	return func(b *Builder) {
		b.noise = noise.NewGenerator(seed)
	}
}

// WithNoiseGenerator uses g for every noise sample drawn by the builder.
func WithNoiseGenerator(g *noise.Generator) Option {
	return func(b *Builder) {
		b.noise = g
	}
}

// NewBuilder returns a Builder. Without options the noise generator is
// seeded from the clock.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.noise == nil {
		b.noise = noise.NewTimeSeededGenerator()
	}
	return b
}

// Build validates spec and runs the pipeline with a fresh clock-seeded
// builder.
func Build(spec SignalSpec) (*Result, error) {
	return NewBuilder().Build(spec)
}

// Build validates spec and produces its Result. Nothing is computed when
// validation fails.
func (b *Builder) Build(spec SignalSpec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	n := spec.Samples
	dt := spec.SampleInterval()
	omega := 2 * math.Pi * float64(spec.CarrierFrequency)

	spec.Tones = append([]waveform.Tone(nil), spec.Tones...)

	res := &Result{
		Spec:       spec,
		SampleRate: spec.SampleRate(),
		Time:       make([]float64, n),
		Message:    make([]float64, n),
		Carrier:    make([]float64, n),
	}

	for i := 0; i < n; i++ {
		t := float64(i) * dt
		res.Time[i] = t
		res.Carrier[i] = math.Cos(omega * t)
		res.Message[i] = waveform.Sample(t, spec.Tones, spec.Shape, spec.DutyCycle) +
			b.noise.Sample(spec.Noise, spec.NoiseAmplitude)
	}

	modulated, err := modulation.Modulate(spec.Variant, res.Message, res.Carrier, res.Time, modulation.Params{
		CarrierFrequency: spec.CarrierFrequency,
		Index:            spec.ModulationIndex,
		PhaseShift:       spec.PhaseShift,
	})
	if err != nil {
		return nil, fmt.Errorf("modulation failed: %w", err)
	}
	res.Modulated = modulated

	demodulated, ok, err := demodulation.Demodulate(spec.Demodulation, res.Modulated, res.Time,
		spec.CarrierFrequency, spec.FilterAlpha)
	if err != nil {
		return nil, fmt.Errorf("demodulation failed: %w", err)
	}
	if ok {
		res.Demodulated = demodulated
	}

	spectrum, err := dsp.ComputeSpectrum(res.Modulated, dt)
	if err != nil {
		return nil, fmt.Errorf("spectrum failed: %w", err)
	}
	// padding a non power-of-two length yields extra bins; keep Samples/2
	res.Frequency = spectrum.Frequency[:n/2]
	res.Spectrum = spectrum.Magnitude[:n/2]

	return res, nil
}
