// Package modulation impresses a message signal onto a carrier using one of
// the supported amplitude-modulation variants.
package modulation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"hz.tools/rf"

	"am-simulator/internal/dsp"
)

// ErrInvalidVariant is returned for a variant tag or value that is not one of
// the defined AM variants.
var ErrInvalidVariant = errors.New("invalid modulation variant")

// Variant is an amplitude-modulation scheme.
type Variant int

const (
	DSBAM Variant = iota // double sideband, full carrier
	DSBSC                // double sideband, suppressed carrier
	SSB                  // single sideband
	VSB                  // vestigial sideband (simplified)
	QAM                  // quadrature amplitude (same message on both rails)
)

var variantNames = map[Variant]string{
	DSBAM: "DSB-AM",
	DSBSC: "DSB-SC",
	SSB:   "SSB",
	VSB:   "VSB",
	QAM:   "QAM",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Valid reports whether v is one of the defined variants.
func (v Variant) Valid() bool {
	_, ok := variantNames[v]
	return ok
}

// Variants lists every defined variant in declaration order.
func Variants() []Variant {
	return []Variant{DSBAM, DSBSC, SSB, VSB, QAM}
}

// ParseVariant parses a variant tag case-insensitively.
func ParseVariant(name string) (Variant, error) {
	for v, n := range variantNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (must be DSB-AM, DSB-SC, SSB, VSB or QAM)", ErrInvalidVariant, name)
}

// Params carries the carrier settings shared by every variant.
type Params struct {
	CarrierFrequency rf.Hz
	Index            float64 // modulation index k
	PhaseShift       float64 // degrees, QAM only
}

// Modulate returns the modulated signal for the full time grid. message,
// carrier and t must have equal length; carrier[i] is expected to be
// cos(2*pi*fc*t[i]).
func Modulate(variant Variant, message, carrier, t []float64, p Params) ([]float64, error) {
	if len(message) != len(carrier) || len(message) != len(t) {
		return nil, fmt.Errorf("modulate: length mismatch (message %d, carrier %d, time %d)",
			len(message), len(carrier), len(t))
	}

	k := p.Index
	omega := 2 * math.Pi * float64(p.CarrierFrequency)
	out := make([]float64, len(message))

	switch variant {
	case DSBAM:
		for i := range out {
			out[i] = (1 + k*message[i]) * carrier[i]
		}
	case DSBSC:
		for i := range out {
			out[i] = k * message[i] * carrier[i]
		}
	case SSB:
		hilbert, err := dsp.Hilbert(message)
		if err != nil {
			return nil, fmt.Errorf("modulate SSB: %w", err)
		}
		for i := range out {
			out[i] = k * (message[i]*math.Cos(omega*t[i]) - hilbert[i]*math.Sin(omega*t[i]))
		}
	case VSB:
		for i := range out {
			out[i] = (0.5 + k*message[i]) * carrier[i]
		}
	case QAM:
		phi := p.PhaseShift * math.Pi / 180
		for i := range out {
			inPhase := k * message[i] * math.Cos(omega*t[i])
			quadrature := k * message[i] * math.Cos(omega*t[i]+phi)
			out[i] = inPhase + quadrature
		}
	default:
		return nil, fmt.Errorf("modulate: %w: %v", ErrInvalidVariant, variant)
	}

	return out, nil
}
