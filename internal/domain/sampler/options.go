package sampler

import "math/rand"

// Option applies a configuration option to the Normal sampler.
type Option func(*Normal)

// WithSource sets the random generator. Pass a seeded generator for
// deterministic test fixtures.
func WithSource(rng *rand.Rand) Option {
	return func(n *Normal) {
		if rng != nil {
			n.rng = rng
		}
	}
}

// WithSeed seeds a fresh generator with the given seed.
func WithSeed(seed int64) Option {
	return func(n *Normal) {
		n.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible runs
	}
}
