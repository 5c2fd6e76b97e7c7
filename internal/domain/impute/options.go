package impute

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSampler sets the random sampler used for normal draws and jitter.
// Inject a seeded or stub sampler for deterministic fixtures.
func WithSampler(s Sampler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sampler = s
		}
	}
}

// WithJitterAmplitude overrides the interpolation jitter amplitude.
// Zero disables the perturbation entirely.
func WithJitterAmplitude(a float64) Option {
	return func(e *Engine) {
		if a >= 0 {
			e.jitter = a
		}
	}
}
