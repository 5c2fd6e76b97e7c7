package codec

import "errors"

// Sentinel kinds for CSV parsing errors.
var (
	ErrHeader        = errors.New("invalid csv header")
	ErrUnknownColumn = errors.New("column not in declared configuration")
	ErrBadRow        = errors.New("invalid csv row")
)
