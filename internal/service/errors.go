package service

import "errors"

// Business-rule errors. These are expected, user-facing outcomes and are
// never logged as server faults.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrQuotaExceeded           = errors.New("daily task limit reached")
	ErrCategoryAlreadyComplete = errors.New("orientation category already complete")
	ErrAlreadyProcessed        = errors.New("operation already processed")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrUpstreamPaymentFailure  = errors.New("payment provider declined the capture")
	ErrInsufficientBalance     = errors.New("insufficient wallet balance")
	ErrAccessDenied            = errors.New("access denied at current progression stage")
)
