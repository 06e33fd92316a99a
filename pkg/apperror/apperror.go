package apperror

import (
	"fmt"
	"net/http"
)

// Error is an application error carrying a stable message code and the HTTP
// status it maps to. Controllers surface the code verbatim in the response
// body so API clients can branch on it.
type Error struct {
	Code   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause attaches the underlying cause and returns the error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// NotFound creates an error for a catalog entity that does not exist.
func NotFound(code string) *Error {
	return &Error{Code: code, Status: http.StatusNotFound}
}

// Conflict creates an error for a violated state precondition, such as an
// already-anonymized table or a missing live database.
func Conflict(code string) *Error {
	return &Error{Code: code, Status: http.StatusConflict}
}

// Unavailable creates an error for a live database host that cannot be reached.
func Unavailable(code string, cause error) *Error {
	return &Error{Code: code, Status: http.StatusServiceUnavailable, Err: cause}
}

// Validation creates an error for a rejected request payload.
func Validation(code string) *Error {
	return &Error{Code: code, Status: http.StatusBadRequest}
}

// PartialFailure reports a copy or rewrite run that aborted mid-stream.
// Batches numbered before failedBatch committed and remain applied; the
// destination table must be treated as partial and recovered by drop+recreate.
func PartialFailure(succeededBatches, failedBatch int, cause error) *Error {
	return &Error{
		Code:   "partial_failure",
		Status: http.StatusInternalServerError,
		Err:    fmt.Errorf("batch %d failed after %d committed batches: %w", failedBatch, succeededBatches, cause),
	}
}
