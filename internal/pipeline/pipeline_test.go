package pipeline

import (
	"errors"
	"math"
	"testing"

	"hz.tools/rf"

	"am-simulator/internal/demodulation"
	"am-simulator/internal/modulation"
	"am-simulator/internal/noise"
	"am-simulator/internal/waveform"
)

// scenarioSpec is the reference DSB-AM scenario: 1 kHz carrier, one 100 Hz
// tone, coherent demodulation.
func scenarioSpec() SignalSpec {
	return SignalSpec{
		Variant:          modulation.DSBAM,
		CarrierFrequency: rf.Hz(1000),
		Tones:            []waveform.Tone{{Frequency: rf.Hz(100), Amplitude: 1.0}},
		ModulationIndex:  0.5,
		Shape:            waveform.Sine,
		Noise:            noise.None,
		Demodulation:     demodulation.Coherent,
		Samples:          4096,
		Duration:         0.05,
		FilterAlpha:      0.1,
	}
}

func TestBuildScenario(t *testing.T) {
	res, err := NewBuilder(WithSeed(1)).Build(scenarioSpec())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if res.Message[0] != 1.0 {
		t.Errorf("message[0] = %v, want 1.0", res.Message[0])
	}
	if res.Carrier[0] != 1.0 {
		t.Errorf("carrier[0] = %v, want 1.0", res.Carrier[0])
	}
	if res.Modulated[0] != 1.5 {
		t.Errorf("modulated[0] = %v, want 1.5", res.Modulated[0])
	}

	demod, ok := res.Demodulation()
	if !ok {
		t.Fatal("expected a demodulated signal")
	}

	allZero := true
	for _, v := range demod {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Fatal("demodulated signal is all zero")
	}

	// Mixing (1+k*m)cos with the locked carrier leaves (1+k*m)/2 after the
	// low-pass. Average the last ten double-carrier periods to remove ripple.
	tail := 410
	var got, want float64
	for i := res.Len() - tail; i < res.Len(); i++ {
		got += demod[i]
		want += (1 + 0.5*res.Message[i]) / 2
	}
	got /= float64(tail)
	want /= float64(tail)
	if math.Abs(got-want) > 0.2*want {
		t.Errorf("settled demodulated level = %v, want within 20%% of %v", got, want)
	}
}

func TestBuildLengths(t *testing.T) {
	for _, variant := range modulation.Variants() {
		for _, samples := range []int{1024, 3000, 4096, 16384} {
			spec := scenarioSpec()
			spec.Variant = variant
			spec.Samples = samples
			spec.PhaseShift = 45
			spec.Noise = noise.Gaussian
			spec.NoiseAmplitude = 0.1
			spec.Demodulation = demodulation.NonCoherent

			res, err := NewBuilder(WithSeed(9)).Build(spec)
			if err != nil {
				t.Fatalf("%s/%d: Build failed: %v", variant, samples, err)
			}

			for name, seq := range map[string][]float64{
				"time":        res.Time,
				"message":     res.Message,
				"carrier":     res.Carrier,
				"modulated":   res.Modulated,
				"demodulated": res.Demodulated,
			} {
				if len(seq) != samples {
					t.Errorf("%s/%d: len(%s) = %d, want %d", variant, samples, name, len(seq), samples)
				}
			}
			if len(res.Frequency) != samples/2 || len(res.Spectrum) != samples/2 {
				t.Errorf("%s/%d: spectral lengths = %d/%d, want %d", variant, samples,
					len(res.Frequency), len(res.Spectrum), samples/2)
			}
		}
	}
}

func TestDSBSCZeroIndex(t *testing.T) {
	spec := scenarioSpec()
	spec.Variant = modulation.DSBSC
	spec.ModulationIndex = 0

	res, err := NewBuilder(WithSeed(1)).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i, v := range res.Modulated {
		if v != 0 {
			t.Fatalf("modulated[%d] = %v, want 0", i, v)
		}
	}
}

func TestNoNoiseMessageIsSynthesizerOutput(t *testing.T) {
	spec := scenarioSpec()
	spec.Tones = []waveform.Tone{
		{Frequency: rf.Hz(100), Amplitude: 1},
		{Frequency: rf.Hz(300), Amplitude: 0.4},
	}
	spec.Shape = waveform.Triangle

	res, err := Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := range res.Message {
		want := waveform.Sample(res.Time[i], spec.Tones, spec.Shape, spec.DutyCycle)
		if res.Message[i] != want {
			t.Fatalf("message[%d] = %v, want %v", i, res.Message[i], want)
		}
	}
}

func TestSeededBuildsAreReproducible(t *testing.T) {
	spec := scenarioSpec()
	spec.Noise = noise.White
	spec.NoiseAmplitude = 0.5

	a, err := NewBuilder(WithSeed(42)).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := NewBuilder(WithNoiseGenerator(noise.NewGenerator(42))).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := range a.Message {
		if a.Message[i] != b.Message[i] {
			t.Fatalf("message[%d] differs: %v vs %v", i, a.Message[i], b.Message[i])
		}
	}
}

func TestNoDemodulation(t *testing.T) {
	spec := scenarioSpec()
	spec.Demodulation = demodulation.None

	res, err := Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := res.Demodulation(); ok {
		t.Fatal("expected no demodulated signal")
	}
	row := res.Row(10)
	if row[4] != 0 || row[0] != res.Time[10] || row[3] != res.Modulated[10] {
		t.Errorf("Row(10) = %v", row)
	}
}

func TestResultOwnsTones(t *testing.T) {
	spec := scenarioSpec()
	res, err := NewBuilder(WithSeed(1)).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	spec.Tones[0].Frequency = rf.Hz(400)
	if res.Spec.Tones[0].Frequency != rf.Hz(100) {
		t.Errorf("result tone changed with the caller's slice: %v", res.Spec.Tones[0].Frequency)
	}
}

func TestPaddedSpectrumBins(t *testing.T) {
	spec := scenarioSpec()
	spec.Samples = 3000

	res, err := NewBuilder(WithSeed(1)).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(res.Frequency) != 1500 {
		t.Fatalf("Expected 1500 bins, got %d", len(res.Frequency))
	}

	// bins come from the 4096-point padded transform
	last := 1499 * res.SampleRate / 4096
	if math.Abs(res.Frequency[1499]-last) > 1e-6 {
		t.Errorf("last bin = %v, want %v", res.Frequency[1499], last)
	}
	if res.Frequency[1499] >= res.SampleRate/2 {
		t.Errorf("last bin %v should fall short of Nyquist", res.Frequency[1499])
	}
}

func TestSpectrumPeakAtCarrier(t *testing.T) {
	spec := scenarioSpec()
	spec.Duration = 0.1 // 10 Hz bins, carrier on bin 100
	spec.Demodulation = demodulation.None

	res, err := NewBuilder(WithSeed(1)).Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	peak := 0
	for i := range res.Spectrum {
		if res.Spectrum[i] > res.Spectrum[peak] {
			peak = i
		}
	}
	if math.Abs(res.Frequency[peak]-1000) > 1e-6 {
		t.Errorf("spectral peak at %v Hz, want 1000 Hz", res.Frequency[peak])
	}
	if math.Abs(res.Spectrum[peak]-1) > 1e-6 {
		t.Errorf("carrier magnitude = %v, want 1", res.Spectrum[peak])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignalSpec)
	}{
		{"carrier too low", func(s *SignalSpec) { s.CarrierFrequency = 49 }},
		{"carrier too high", func(s *SignalSpec) { s.CarrierFrequency = 5001 }},
		{"carrier NaN", func(s *SignalSpec) { s.CarrierFrequency = rf.Hz(math.NaN()) }},
		{"no tones", func(s *SignalSpec) { s.Tones = nil }},
		{"zero tone frequency", func(s *SignalSpec) { s.Tones = []waveform.Tone{{Frequency: 0, Amplitude: 1}} }},
		{"negative amplitude", func(s *SignalSpec) { s.Tones = []waveform.Tone{{Frequency: 100, Amplitude: -1}} }},
		{"index negative", func(s *SignalSpec) { s.ModulationIndex = -0.1 }},
		{"index too high", func(s *SignalSpec) { s.ModulationIndex = 2.1 }},
		{"qam phase", func(s *SignalSpec) { s.Variant = modulation.QAM; s.PhaseShift = 361 }},
		{"unknown shape", func(s *SignalSpec) { s.Shape = waveform.Shape(9) }},
		{"duty cycle", func(s *SignalSpec) { s.DutyCycle = 101 }},
		{"unknown noise", func(s *SignalSpec) { s.Noise = noise.Kind(9) }},
		{"noise amplitude", func(s *SignalSpec) { s.NoiseAmplitude = 1.5 }},
		{"unknown demodulation", func(s *SignalSpec) { s.Demodulation = demodulation.Kind(9) }},
		{"too few samples", func(s *SignalSpec) { s.Samples = 1023 }},
		{"too many samples", func(s *SignalSpec) { s.Samples = 16385 }},
		{"duration too short", func(s *SignalSpec) { s.Duration = 0.001 }},
		{"duration too long", func(s *SignalSpec) { s.Duration = 2 }},
		{"alpha too small", func(s *SignalSpec) { s.FilterAlpha = 0 }},
		{"alpha too large", func(s *SignalSpec) { s.FilterAlpha = 1.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := scenarioSpec()
			tt.mutate(&spec)
			res, err := Build(spec)
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
			if res != nil {
				t.Fatal("expected no result on validation failure")
			}
		})
	}
}

func TestValidateVariant(t *testing.T) {
	spec := scenarioSpec()
	spec.Variant = modulation.Variant(7)
	err := spec.Validate()
	if !errors.Is(err, ErrInvalidSpec) || !errors.Is(err, modulation.ErrInvalidVariant) {
		t.Fatalf("expected ErrInvalidSpec and ErrInvalidVariant, got %v", err)
	}

	// phase shift is ignored outside QAM
	spec = scenarioSpec()
	spec.PhaseShift = 720
	if err := spec.Validate(); err != nil {
		t.Fatalf("non-QAM phase shift rejected: %v", err)
	}
}

func TestTones(t *testing.T) {
	tones, err := Tones([]float64{100, 200}, []float64{1, 0.5})
	if err != nil {
		t.Fatalf("Tones failed: %v", err)
	}
	if len(tones) != 2 || tones[1].Frequency != 200 || tones[1].Amplitude != 0.5 {
		t.Errorf("Tones = %+v", tones)
	}
	if _, err := Tones([]float64{100}, []float64{1, 2}); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("mismatched lengths error = %v, want ErrInvalidSpec", err)
	}
	if _, err := Tones(nil, nil); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("empty tones error = %v, want ErrInvalidSpec", err)
	}
}
