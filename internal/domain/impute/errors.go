package impute

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownAlgorithm = errors.New("unknown imputation algorithm")
)
