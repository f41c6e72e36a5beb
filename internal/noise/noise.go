// Package noise draws additive noise samples from a generator-owned PRNG.
package noise

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Kind selects the noise distribution.
type Kind int

const (
	None Kind = iota
	White
	Gaussian
	Pink
)

var kindNames = map[Kind]string{
	None:     "None",
	White:    "White",
	Gaussian: "Gaussian",
	Pink:     "Pink",
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

// ParseKind parses a noise kind name case-insensitively.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown noise type %q (must be None, White, Gaussian or Pink)", name)
}

// pinkTerms is the number of scaled uniform draws averaged by Pink.
const pinkTerms = 5

// Generator produces noise samples. A Generator is not safe for concurrent
// use; give each goroutine its own.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. The same seed always
// yields the same sample stream.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededGenerator returns a generator seeded from the wall clock.
func NewTimeSeededGenerator() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

// Sample draws one sample of the given kind scaled by amplitude. None
// returns 0 without advancing the stream.
func (g *Generator) Sample(kind Kind, amplitude float64) float64 {
	switch kind {
	case White:
		return amplitude * g.uniform()
	case Gaussian:
		return amplitude * g.rng.NormFloat64()
	case Pink:
		// 1/i weighted uniforms give a rough pink tilt, not a true 1/f filter
		var pink float64
		for i := 1; i <= pinkTerms; i++ {
			pink += g.uniform() / float64(i)
		}
		return amplitude * pink / pinkTerms
	default:
		return 0
	}
}

// uniform draws from [-1, 1).
func (g *Generator) uniform() float64 {
	return g.rng.Float64()*2 - 1
}
