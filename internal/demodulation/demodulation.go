// Package demodulation recovers a message from a modulated signal, either
// coherently with a software phase-locked loop or by envelope detection.
package demodulation

import (
	"fmt"
	"math"
	"strings"

	"hz.tools/rf"
)

// Kind selects the demodulation method.
type Kind int

const (
	None Kind = iota
	Coherent
	NonCoherent
)

var kindNames = map[Kind]string{
	None:        "None",
	Coherent:    "Coherent",
	NonCoherent: "Non-Coherent",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a demodulation kind case-insensitively.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown demodulation type %q (must be None, Coherent or Non-Coherent)", name)
}

// LoopGain is the proportional gain of the phase-locked loop.
const LoopGain = 0.01

// Demodulate recovers the message from modulated. The returned bool is false
// when kind is None, in which case no signal is computed and the slice is nil.
func Demodulate(kind Kind, modulated, t []float64, carrierFrequency rf.Hz, alpha float64) ([]float64, bool, error) {
	if len(modulated) != len(t) {
		return nil, false, fmt.Errorf("demodulate: length mismatch (signal %d, time %d)", len(modulated), len(t))
	}

	switch kind {
	case None:
		return nil, false, nil
	case Coherent:
		return LowPass(MixPLL(modulated, t, carrierFrequency), alpha), true, nil
	case NonCoherent:
		return LowPass(Envelope(modulated), alpha), true, nil
	default:
		return nil, false, fmt.Errorf("demodulate: unknown kind %v", kind)
	}
}

// MixPLL mixes the signal with a locally generated carrier whose phase is
// steered by a first-order phase-locked loop. The loop state runs
// sequentially over the samples.
func MixPLL(modulated, t []float64, carrierFrequency rf.Hz) []float64 {
	omega := 2 * math.Pi * float64(carrierFrequency)
	mixed := make([]float64, len(modulated))

	var phase float64
	for i, v := range modulated {
		mixed[i] = v * math.Cos(omega*t[i]+phase)
		phaseError := mixed[i] * math.Sin(omega*t[i]+phase)
		phase += LoopGain * phaseError
	}
	return mixed
}

// Envelope rectifies the signal.
func Envelope(modulated []float64) []float64 {
	out := make([]float64, len(modulated))
	for i, v := range modulated {
		out[i] = math.Abs(v)
	}
	return out
}

// LowPass applies a single-pole exponential filter:
// y[0] = x[0], y[i] = alpha*x[i] + (1-alpha)*y[i-1].
func LowPass(x []float64, alpha float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 {
		return y
	}
	y[0] = x[0]
	for i := 1; i < len(x); i++ {
		y[i] = alpha*x[i] + (1-alpha)*y[i-1]
	}
	return y
}
