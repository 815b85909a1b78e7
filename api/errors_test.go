package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError_ClientDetail_default(t *testing.T) {
	err := NewHTTPError(404, nil)

	assert.Equal(t, "Not Found", err.ClientDetail())
	assert.Equal(t, "404: Not Found", err.Error())
}

func TestHTTPError_ClientDetail_custom(t *testing.T) {
	err := NewHTTPError(400, "Custom Error Message")

	assert.Equal(t, "Custom Error Message", err.ClientDetail())
}

func TestHTTPError_LogDetail(t *testing.T) {
	assert.Equal(t, "", NewHTTPError(400, nil).LogDetail())
	assert.Equal(t, "msg", NewHTTPError(400, "msg").LogDetail())
	assert.Equal(t, "diag", NewHTTPError(400, "msg").WithErrorDetail("diag").LogDetail())
}

func TestHTTPError_WithHeaders(t *testing.T) {
	err := NewHTTPError(401, nil).WithHeaders(map[string]string{"WWW-Authenticate": "Bearer"})

	assert.Equal(t, "Bearer", err.Headers["WWW-Authenticate"])
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Loc: []string{"body", "value"}, Msg: "field required", Type: "value_error.missing"},
	}}

	assert.Equal(t, "validation failed for 1 field(s)", err.Error())
}
