package api

import (
	"fmt"
	"net/http"
)

// HTTPError is a fault returned to the client with an HTTP status code.
//
// Detail is the client-visible payload. ErrorDetail is a server-only
// diagnostic that is written to the access log but never returned to the
// caller.
type HTTPError struct {
	StatusCode  int
	Detail      interface{}
	Headers     map[string]string
	ErrorDetail interface{}
}

// NewHTTPError returns an HTTPError for the given status code. A nil detail
// falls back to the standard status text when rendered.
func NewHTTPError(statusCode int, detail interface{}) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Detail: detail}
}

// WithErrorDetail attaches a server-only diagnostic and returns the error.
func (e *HTTPError) WithErrorDetail(detail interface{}) *HTTPError {
	e.ErrorDetail = detail
	return e
}

// WithHeaders attaches extra response headers and returns the error.
func (e *HTTPError) WithHeaders(headers map[string]string) *HTTPError {
	e.Headers = headers
	return e
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %v", e.StatusCode, e.ClientDetail())
}

// ClientDetail returns the payload rendered to the caller, falling back to
// the standard status text when no detail was supplied.
func (e *HTTPError) ClientDetail() interface{} {
	if e.Detail != nil {
		return e.Detail
	}

	return http.StatusText(e.StatusCode)
}

// LogDetail returns the diagnostic written to the access log, or "" when
// there is nothing beyond the standard status text to report.
func (e *HTTPError) LogDetail() string {
	if e.ErrorDetail != nil {
		return fmt.Sprintf("%v", e.ErrorDetail)
	}

	if e.Detail != nil {
		return fmt.Sprintf("%v", e.Detail)
	}

	return ""
}

// FieldError describes a single invalid request body field.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is a fault raised when the request body does not satisfy
// the route's parameter descriptors. It is rendered as a 422 with the field
// errors as the client-visible detail.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}
