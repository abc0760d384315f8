package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/tesler-ui/datasync/internal/model"
)

// Error is the typed transport failure the classification pipeline consumes.
//
// StatusCode zero means no HTTP response was obtained (offline, DNS, CORS);
// those failures classify as network errors unless they are cancellations.
type Error struct {
	// StatusCode is the HTTP status, zero when no response was obtained.
	StatusCode int
	// StatusText is the HTTP status line text.
	StatusText string
	// Body is the raw response body, kept for diagnostics.
	Body string
	// Popup carries the server's popup message lines, when attached.
	Popup []string
	// PostInvoke carries a server-attached follow-up instruction (418).
	PostInvoke *model.PostInvoke
	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("api: no response: %v", e.Err)
		}
		return "api: no response"
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.StatusText)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCancellation reports whether an error represents a canceled request.
// Cancellation is not an error to the classification pipeline: it is
// filtered out before any taxonomy applies.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// AsError extracts the typed transport error, nil when err is of another
// kind entirely (programming error surfaced through the error channel).
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
