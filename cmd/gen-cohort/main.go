package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/gradefill/internal/config"
	"github.com/okian/gradefill/internal/gencohort"
	"github.com/okian/gradefill/pkg/logger"
)

// Default configuration constants.
const (
	defaultStudents    = 50
	defaultMissingRate = 0.15
	defaultTimeout     = 30 * time.Second
)

func main() {
	var (
		students    = flag.Int("students", defaultStudents, "Number of students to generate")
		missingRate = flag.Float64("missing", defaultMissingRate, "Probability that a cell is absent")
		seed        = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		outputFile  = flag.String("output", "", "CSV output file (empty = don't write)")
		baseURL     = flag.String("url", "", "Base URL of a running service to submit to (empty = don't submit)")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()
	ctx := context.Background()

	// The generator shares the service's declared table shape.
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return
	}
	slots := cfg.ModelTimeSlots()
	subjects := cfg.ModelSubjects()

	genCfg := &gencohort.Config{
		Students:    *students,
		MissingRate: *missingRate,
		Seed:        *seed,
		OutputFile:  *outputFile,
		BaseURL:     *baseURL,
		Timeout:     *timeout,
	}
	cohort := gencohort.Generate(ctx, genCfg, slots, subjects)

	if *outputFile != "" {
		if err := gencohort.WriteCSV(*outputFile, cohort, slots, subjects); err != nil {
			log.Error(ctx, "failed to write csv", logger.Error(err))
			return
		}
		log.Info(ctx, "csv written", logger.String("path", *outputFile))
	}

	if *baseURL != "" {
		if err := gencohort.Submit(ctx, genCfg, cohort, slots, subjects); err != nil {
			log.Error(ctx, "failed to submit cohort", logger.Error(err))
			return
		}
	}

	if *outputFile == "" && *baseURL == "" {
		log.Warn(ctx, "neither -output nor -url given; generated cohort discarded")
	}
}
