package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if GRADEFILL_CONFIG is set
//  3. env (prefix GRADEFILL_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("GRADEFILL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GRADEFILL_ADDR, GRADEFILL_ALGORITHM, ...
	// Map env keys like GRADEFILL_LOG_LEVEL -> log_level (flat keys).
	envProvider := env.Provider("GRADEFILL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gradefill_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the configuration contract owned by this collaborator:
// the imputation core itself never validates.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if len(c.TimeSlots) == 0 {
		return fmt.Errorf("%w: at least one time slot required", ErrInvalidConfig)
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("%w: at least one subject required", ErrInvalidConfig)
	}
	if c.MaxRankingLimit < 1 {
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	}

	seenSlots := make(map[string]struct{}, len(c.TimeSlots))
	for _, s := range c.TimeSlots {
		if s.ID == "" {
			return fmt.Errorf("%w: time slot with empty id", ErrInvalidConfig)
		}
		if _, dup := seenSlots[s.ID]; dup {
			return fmt.Errorf("%w: duplicate time slot id %q", ErrInvalidConfig, s.ID)
		}
		seenSlots[s.ID] = struct{}{}
		if s.Weight < 0 {
			return fmt.Errorf("%w: time slot %q has negative weight", ErrInvalidConfig, s.ID)
		}
	}

	seenSubjects := make(map[string]struct{}, len(c.Subjects))
	for _, s := range c.Subjects {
		if s.ID == "" {
			return fmt.Errorf("%w: subject with empty id", ErrInvalidConfig)
		}
		if _, dup := seenSubjects[s.ID]; dup {
			return fmt.Errorf("%w: duplicate subject id %q", ErrInvalidConfig, s.ID)
		}
		seenSubjects[s.ID] = struct{}{}
		if s.Weight < 0 {
			return fmt.Errorf("%w: subject %q has negative weight", ErrInvalidConfig, s.ID)
		}
		if s.FullMarks <= 0 {
			return fmt.Errorf("%w: subject %q must have positive full marks", ErrInvalidConfig, s.ID)
		}
	}
	return nil
}
