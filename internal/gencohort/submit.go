package gencohort

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/okian/gradefill/internal/adapters/codec"
	"github.com/okian/gradefill/internal/domain/model"
	"github.com/okian/gradefill/pkg/logger"
)

// outputFilePermission is the mode for generated CSV files.
const outputFilePermission = 0o600

// WriteCSV encodes the cohort as a wide table and writes it to path.
func WriteCSV(path string, cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) error {
	var buf bytes.Buffer
	if err := codec.Write(&buf, cohort, slots, subjects); err != nil {
		return fmt.Errorf("encode cohort: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), outputFilePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Submit posts the cohort to a running service as text/csv.
func Submit(ctx context.Context, cfg *Config, cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) error {
	var buf bytes.Buffer
	if err := codec.Write(&buf, cohort, slots, subjects); err != nil {
		return fmt.Errorf("encode cohort: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/cohort", &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post cohort: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post cohort: status %d: %s", resp.StatusCode, string(body))
	}

	logger.Get().Info(ctx, "cohort submitted",
		logger.String("url", cfg.BaseURL+"/cohort"),
		logger.Int("students", len(cohort)),
	)
	return nil
}
