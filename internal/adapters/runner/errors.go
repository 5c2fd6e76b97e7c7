package runner

import "errors"

// Sentinel kinds for runner errors.
var (
	ErrBusy = errors.New("imputation run already in flight")
)
