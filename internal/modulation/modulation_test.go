package modulation

import (
	"errors"
	"math"
	"testing"

	"hz.tools/rf"
)

// grid returns time, carrier and a single-tone cosine message on a grid where
// both tones land exactly on FFT bins.
func grid(n int, fs, fc, fm float64) (t, carrier, message []float64) {
	t = make([]float64, n)
	carrier = make([]float64, n)
	message = make([]float64, n)
	for i := range t {
		t[i] = float64(i) / fs
		carrier[i] = math.Cos(2 * math.Pi * fc * t[i])
		message[i] = math.Cos(2 * math.Pi * fm * t[i])
	}
	return t, carrier, message
}

func TestModulateFormulas(t *testing.T) {
	tm, carrier, message := grid(1024, 10240, 1000, 100)
	p := Params{CarrierFrequency: rf.Hz(1000), Index: 0.7, PhaseShift: 90}

	tests := []struct {
		variant Variant
		want    func(i int) float64
	}{
		{DSBAM, func(i int) float64 { return (1 + 0.7*message[i]) * carrier[i] }},
		{DSBSC, func(i int) float64 { return 0.7 * message[i] * carrier[i] }},
		{VSB, func(i int) float64 { return (0.5 + 0.7*message[i]) * carrier[i] }},
		{QAM, func(i int) float64 {
			w := 2 * math.Pi * 1000 * tm[i]
			return 0.7*message[i]*math.Cos(w) + 0.7*message[i]*math.Cos(w+math.Pi/2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			out, err := Modulate(tt.variant, message, carrier, tm, p)
			if err != nil {
				t.Fatalf("Modulate failed: %v", err)
			}
			for i := range out {
				if math.Abs(out[i]-tt.want(i)) > 1e-12 {
					t.Fatalf("sample %d = %v, want %v", i, out[i], tt.want(i))
				}
			}
		})
	}
}

func TestSSBIsUpperSideband(t *testing.T) {
	tm, carrier, message := grid(1024, 10240, 1000, 100)
	out, err := Modulate(SSB, message, carrier, tm, Params{CarrierFrequency: rf.Hz(1000), Index: 0.5})
	if err != nil {
		t.Fatalf("Modulate failed: %v", err)
	}
	for i := range out {
		want := 0.5 * math.Cos(2*math.Pi*1100*tm[i])
		if math.Abs(out[i]-want) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want)
		}
	}
}

func TestDSBSCZeroIndexIsSilent(t *testing.T) {
	tm, carrier, message := grid(2048, 40960, 1000, 100)
	out, err := Modulate(DSBSC, message, carrier, tm, Params{CarrierFrequency: rf.Hz(1000), Index: 0})
	if err != nil {
		t.Fatalf("Modulate failed: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestModulateRejectsUnknownVariant(t *testing.T) {
	tm, carrier, message := grid(16, 160, 10, 1)
	_, err := Modulate(Variant(99), message, carrier, tm, Params{})
	if !errors.Is(err, ErrInvalidVariant) {
		t.Fatalf("expected ErrInvalidVariant, got %v", err)
	}
}

func TestModulateRejectsLengthMismatch(t *testing.T) {
	if _, err := Modulate(DSBAM, make([]float64, 4), make([]float64, 3), make([]float64, 4), Params{}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants() {
		got, err := ParseVariant(v.String())
		if err != nil || got != v {
			t.Errorf("ParseVariant(%q) = %v, %v", v.String(), got, err)
		}
	}
	if got, err := ParseVariant("dsb-sc"); err != nil || got != DSBSC {
		t.Errorf("ParseVariant is not case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseVariant("FM"); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("ParseVariant(FM) error = %v, want ErrInvalidVariant", err)
	}
}
