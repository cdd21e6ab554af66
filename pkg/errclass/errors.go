// Package errclass defines the stable error classes surfaced by staging and
// installation operations.
package errclass

import "fmt"

// ShimError is a stable, machine-readable error class with an optional cause.
type ShimError struct {
	Code    string
	Message string
	Err     error
}

func (e *ShimError) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches on Code so that errors.Is(err, errclass.ErrStagingFailed) holds
// for every message variant of the class.
func (e *ShimError) Is(target error) bool {
	t, ok := target.(*ShimError)
	return ok && e.Code == t.Code
}

// Unwrap returns the underlying cause, if any.
func (e *ShimError) Unwrap() error {
	return e.Err
}

// WithMessage returns a new ShimError with the same Code but a specific message.
func (e *ShimError) WithMessage(msg string) *ShimError {
	return &ShimError{Code: e.Code, Message: msg, Err: e.Err}
}

// WithMessagef returns a new ShimError with a formatted message.
func (e *ShimError) WithMessagef(format string, args ...any) *ShimError {
	return &ShimError{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e carrying err as its cause.
func (e *ShimError) Wrap(err error) *ShimError {
	return &ShimError{Code: e.Code, Message: e.Message, Err: err}
}

var (
	ErrInvalidArgument   = &ShimError{Code: "E_INVALID_ARGUMENT"}
	ErrNullArgument      = &ShimError{Code: "E_NULL_ARGUMENT"}
	ErrSourceNotFound    = &ShimError{Code: "E_SOURCE_NOT_FOUND"}
	ErrDestinationExists = &ShimError{Code: "E_DESTINATION_EXISTS"}
	ErrExtractionFailed  = &ShimError{Code: "E_EXTRACTION_FAILED"}
	ErrCleanupFailed     = &ShimError{Code: "E_CLEANUP_FAILED"}
	ErrResolution        = &ShimError{Code: "E_RESOLUTION"}
	ErrPluginNotFound    = &ShimError{Code: "E_PLUGIN_NOT_FOUND"}
	ErrStagingFailed     = &ShimError{Code: "E_STAGING_FAILED"}
)
