package verify

import "errors"

var (
	// ErrCheckerNotFound indicates the pa11y binary is not on PATH.
	ErrCheckerNotFound = errors.New("accessibility checker not found")
	// ErrCheckerFailed indicates the checker exited without a report.
	ErrCheckerFailed = errors.New("accessibility checker failed")
	// ErrBadReport indicates the checker output was not a JSON issue list.
	ErrBadReport = errors.New("accessibility report could not be parsed")
)
