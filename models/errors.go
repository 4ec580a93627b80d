package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidEngine = "INVALID_ENGINE"
	ErrCodeLaunch        = "BROWSER_LAUNCH_FAILED"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeWaitTimeout   = "WAIT_TIMEOUT"
	ErrCodeExtraction    = "EXTRACTION_FAILED"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// SearchError is the hard-failure type: it aborts the remaining protocol
// steps and surfaces to the caller as a request failure. It implements the
// error interface and supports error wrapping via Unwrap.
type SearchError struct {
	Code    string
	Stage   string // protocol stage where the failure occurred
	Message string
	Err     error // wrapped original error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Code, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Code, e.Stage, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError.
func NewSearchError(code, stage, message string, err error) *SearchError {
	return &SearchError{Code: code, Stage: stage, Message: message, Err: err}
}

// SoftError is the tolerated-failure type: an optional interaction (consent
// dismissal, debug snapshot) that did not succeed. A SoftError is logged with
// its context and swallowed; it never aborts the protocol or reaches the
// caller.
type SoftError struct {
	Stage   string
	Message string
	Err     error
}

func (e *SoftError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *SoftError) Unwrap() error {
	return e.Err
}

// NewSoftError creates a new SoftError.
func NewSoftError(stage, message string, err error) *SoftError {
	return &SoftError{Stage: stage, Message: message, Err: err}
}
