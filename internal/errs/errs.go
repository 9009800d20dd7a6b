package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("malformed request")
	ErrConflict   = errors.New("resource conflict")

	// ErrVersionConflict means a write was based on a stale preferences
	// version. It matches ErrConflict under errors.Is.
	ErrVersionConflict = fmt.Errorf("%w: preferences were changed by another editor", ErrConflict)

	// ErrInvalidStep is returned for wizard actions not available at the
	// current step.
	ErrInvalidStep = errors.New("action not available at this step")
)

type ApiErr struct {
	StatusCode int
	err        error
	Details    string
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{StatusCode: statusCode, err: errors.New(message)}
}

// Wrap attaches an HTTP status to err while keeping it matchable with errors.Is.
func Wrap(statusCode int, err error) *ApiErr {
	return &ApiErr{StatusCode: statusCode, err: err}
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

func (e *ApiErr) Unwrap() error {
	return e.err
}

func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// StatusCode maps err to the HTTP status the API reports for it.
func StatusCode(err error) int {
	var apiErr *ApiErr
	switch {
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidStep):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
