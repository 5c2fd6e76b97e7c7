package app

import (
	"github.com/okian/gradefill/internal/domain/impute"
	"github.com/okian/gradefill/internal/domain/model"
	"github.com/okian/gradefill/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeSlots declares the ordered time slots.
func WithTimeSlots(slots []model.TimeSlot) Option {
	return func(s *Service) {
		if len(slots) > 0 {
			s.slots = slots
		}
	}
}

// WithSubjects declares the ordered subjects.
func WithSubjects(subjects []model.Subject) Option {
	return func(s *Service) {
		if len(subjects) > 0 {
			s.subjects = subjects
		}
	}
}

// WithAlgorithm sets the default cross-sectional estimator.
func WithAlgorithm(algo impute.Algorithm) Option {
	return func(s *Service) {
		if algo != "" {
			s.algorithm = algo
		}
	}
}

// WithSeed fixes the random source. 0 keeps clock seeding.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithJitterAmplitude sets the interpolation jitter amplitude.
func WithJitterAmplitude(a float64) Option {
	return func(s *Service) {
		if a >= 0 {
			s.jitter = a
		}
	}
}

// WithMaxRankingLimit caps ranking queries.
func WithMaxRankingLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxRankingLimit = limit
		}
	}
}
