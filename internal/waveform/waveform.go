// Package waveform synthesizes multi-tone message signals.
package waveform

import (
	"fmt"
	"math"
	"strings"

	"hz.tools/rf"
)

// Shape selects the per-tone waveform used by Sample.
type Shape int

const (
	Sine Shape = iota
	Square
	Triangle
	Sawtooth
	Pulse
)

var shapeNames = map[Shape]string{
	Sine:     "Sine",
	Square:   "Square",
	Triangle: "Triangle",
	Sawtooth: "Sawtooth",
	Pulse:    "Pulse",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Valid reports whether s is one of the defined shapes.
func (s Shape) Valid() bool {
	_, ok := shapeNames[s]
	return ok
}

// ParseShape parses a shape name case-insensitively.
func ParseShape(name string) (Shape, error) {
	for shape, n := range shapeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown waveform shape %q (must be Sine, Square, Triangle, Sawtooth or Pulse)", name)
}

// Tone is one frequency/amplitude component of a message signal.
type Tone struct {
	Frequency rf.Hz
	Amplitude float64
}

// Sample evaluates the raw superposition of all tones at time t (seconds).
// The sum is not normalized by the tone count. dutyCycle is a percentage
// and only affects Pulse.
func Sample(t float64, tones []Tone, shape Shape, dutyCycle float64) float64 {
	var sum float64
	for _, tone := range tones {
		freq := float64(tone.Frequency)
		phase := 2 * math.Pi * freq * t

		switch shape {
		case Sine:
			sum += tone.Amplitude * math.Cos(phase)
		case Square:
			sum += tone.Amplitude * sign(math.Cos(phase))
		case Triangle:
			sum += tone.Amplitude * (2 / math.Pi) * math.Asin(math.Cos(phase))
		case Sawtooth:
			sum += tone.Amplitude * 2 * (freq*t - math.Floor(freq*t+0.5))
		case Pulse:
			if math.Mod(phase, 2*math.Pi) < 2*math.Pi*dutyCycle/100 {
				sum += tone.Amplitude
			} else {
				sum -= tone.Amplitude
			}
		}
	}
	return sum
}

// sign mirrors signum: zero stays zero.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
