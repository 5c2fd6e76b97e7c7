// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults; Load layers file/env.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"

	"github.com/okian/gradefill/internal/domain/model"
)

// TimeSlot configures one column group of the score table. Declared order
// defines temporal adjacency.
type TimeSlot struct {
	ID     string  `koanf:"id"`
	Label  string  `koanf:"label"`
	Weight float64 `koanf:"weight"`
}

// Subject configures one scored discipline.
type Subject struct {
	ID        string  `koanf:"id"`
	Name      string  `koanf:"name"`
	Weight    float64 `koanf:"weight"`
	FullMarks float64 `koanf:"full_marks"`
	Category  string  `koanf:"category"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Algorithm selects the cross-sectional estimator:
	// normal, regression, or nearest-neighbor.
	Algorithm string `koanf:"algorithm"`

	// Seed fixes the random source for reproducible imputation runs.
	// 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// JitterAmplitude bounds the uniform perturbation added to
	// interpolated midpoints.
	JitterAmplitude float64 `koanf:"jitter_amplitude"`

	// MaxRankingLimit caps GET /ranking?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// TimeSlots and Subjects declare the score table shape. Data cells
	// outside these sets are rejected at load time.
	TimeSlots []TimeSlot `koanf:"time_slots"`
	Subjects  []Subject  `koanf:"subjects"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Algorithm:       "normal",
		Seed:            0,
		JitterAmplitude: 2.5,
		MaxRankingLimit: 100,
		TimeSlots: []TimeSlot{
			{ID: "t1", Label: "Term 1", Weight: 1.0},
			{ID: "t2", Label: "Term 2", Weight: 1.0},
			{ID: "t3", Label: "Final", Weight: 1.5},
		},
		Subjects: []Subject{
			{ID: "math", Name: "Mathematics", Weight: 1.0, FullMarks: 100, Category: "main"},
			{ID: "physics", Name: "Physics", Weight: 1.0, FullMarks: 100, Category: "main"},
			{ID: "english", Name: "English", Weight: 1.0, FullMarks: 100, Category: "main"},
			{ID: "arts", Name: "Arts", Weight: 0.5, FullMarks: 100, Category: "sub"},
		},
	}
}

// ModelTimeSlots converts the configured slots to domain types, preserving
// declared order.
func (c *Config) ModelTimeSlots() []model.TimeSlot {
	out := make([]model.TimeSlot, len(c.TimeSlots))
	for i, s := range c.TimeSlots {
		out[i] = model.TimeSlot{ID: model.SlotID(s.ID), Label: s.Label, Weight: s.Weight}
	}
	return out
}

// ModelSubjects converts the configured subjects to domain types, preserving
// declared order.
func (c *Config) ModelSubjects() []model.Subject {
	out := make([]model.Subject, len(c.Subjects))
	for i, s := range c.Subjects {
		out[i] = model.Subject{
			ID:        model.SubjectID(s.ID),
			Name:      s.Name,
			Weight:    s.Weight,
			FullMarks: s.FullMarks,
			Category:  model.Category(s.Category),
		}
	}
	return out
}
