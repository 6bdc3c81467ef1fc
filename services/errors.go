package services

import "errors"

// Client-fault errors surface to the API layer, which maps them onto
// 4xx responses. Anything else coming out of the service layer is a
// storage fault (5xx, logged, not retried here).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidRange = errors.New("invalid date range")
	ErrGuestLimit   = errors.New("guest limit exceeded")
	ErrUnavailable  = errors.New("property not available")
	ErrConflict     = errors.New("dates conflict with an existing booking")
	ErrPrecondition = errors.New("precondition failed")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
)
