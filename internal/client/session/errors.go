package session

import (
	"fmt"
	"net/http"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// RemoteError is a non-2xx answer from the server. Message is the
// human-readable reason the server reported; Kind is one of the domain error
// kinds and is what errors.Is matches against.
type RemoteError struct {
	Status  int
	Message string
	Kind    error
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// kindForStatus maps a response status to an error kind.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status == http.StatusUnprocessableEntity:
		return domain.ErrPinLimitExceeded
	case status == http.StatusConflict:
		return domain.ErrPinConflict
	case status >= 500:
		return domain.ErrNetwork
	default:
		return domain.ErrValidation
	}
}

// rejectsCredential reports whether status means the bearer token is no
// longer usable.
func rejectsCredential(status int) bool {
	return status == http.StatusUnauthorized
}

func networkError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrNetwork, err)
}
