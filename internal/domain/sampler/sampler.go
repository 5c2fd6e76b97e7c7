// Package sampler provides the pseudo-random draws used by the imputation
// engine: normal variates via the Box-Muller transform and the uniform
// jitter applied to interpolated values.
package sampler

import (
	"math"
	"math/rand"
	"time"
)

// twoPi is the angle term of the Box-Muller transform.
const twoPi = 2 * math.Pi

// Normal draws values from a normal distribution over an injected generator.
// Inject a seeded *rand.Rand to make a whole imputation run reproducible;
// the zero-option constructor seeds from the clock.
type Normal struct {
	rng *rand.Rand
}

// New creates a sampler with configuration options.
func New(opts ...Option) *Normal {
	n := &Normal{}
	for _, opt := range opts {
		opt(n)
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // statistical sampling, not crypto
	}
	return n
}

// Sample draws one value from N(mean, std^2). Uniform draws that land
// exactly on 0 are re-drawn to keep the logarithm in domain. std == 0 is
// not special-cased: the output is mean plus a zero perturbation.
func (n *Normal) Sample(mean, std float64) float64 {
	u1 := n.rng.Float64()
	for u1 == 0 {
		u1 = n.rng.Float64()
	}
	u2 := n.rng.Float64()
	for u2 == 0 {
		u2 = n.rng.Float64()
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(twoPi*u2)
	return mean + std*z
}

// Jitter draws a uniform perturbation in [-amplitude, +amplitude].
func (n *Normal) Jitter(amplitude float64) float64 {
	return (n.rng.Float64()*2 - 1) * amplitude
}
