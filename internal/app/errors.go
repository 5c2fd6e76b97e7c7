package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidData = errors.New("invalid cohort data")
)
