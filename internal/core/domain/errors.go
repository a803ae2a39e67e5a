package domain

import "errors"

// Error kinds surfaced to callers. Stateful components wrap one of these so
// callers can tell "retry later" from "re-authenticate".
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access forbidden")
	ErrPinLimitExceeded = errors.New("pinned item limit reached")
	ErrNetwork          = errors.New("service unreachable")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrContentNotFound    = errors.New("content not found")
	ErrPinConflict        = errors.New("pin update in progress, try again")
)
