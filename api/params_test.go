package api

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestBindParams_kinds(t *testing.T) {
	req := &Request{body: []byte(`{"s":"x","i":3,"f":1.5,"b":true,"o":{"k":"v"},"a":[1,2]}`)}
	params := []Param{
		{Name: "s", Kind: KindString, Required: true},
		{Name: "i", Kind: KindInt, Required: true},
		{Name: "f", Kind: KindFloat, Required: true},
		{Name: "b", Kind: KindBool, Required: true},
		{Name: "o", Kind: KindObject, Required: true},
		{Name: "a", Kind: KindAny, Required: true},
	}

	bound, verr := bindParams(req, params, validator.New(), false)

	assert.Nil(t, verr)
	assert.Equal(t, "x", bound["s"])
	assert.Equal(t, 3, bound["i"])
	assert.Equal(t, 1.5, bound["f"])
	assert.Equal(t, true, bound["b"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, bound["o"])
	assert.Equal(t, []interface{}{float64(1), float64(2)}, bound["a"])
}

func TestBindParams_missingRequired(t *testing.T) {
	req := &Request{body: []byte(`{}`)}
	params := []Param{{Name: "value", Kind: KindInt, Required: true}}

	bound, verr := bindParams(req, params, validator.New(), false)

	assert.Nil(t, bound)
	assert.Len(t, verr.Fields, 1)
	assert.Equal(t, []string{"body", "value"}, verr.Fields[0].Loc)
	assert.Equal(t, "value_error.missing", verr.Fields[0].Type)
	assert.Equal(t, "field required", verr.Fields[0].Msg)
}

func TestBindParams_missingOptional(t *testing.T) {
	req := &Request{body: []byte(`{}`)}
	params := []Param{{Name: "value", Kind: KindInt}}

	bound, verr := bindParams(req, params, validator.New(), false)

	assert.Nil(t, verr)
	assert.NotContains(t, bound, "value")
}

func TestBindParams_typeMismatch(t *testing.T) {
	req := &Request{body: []byte(`{"value":"a"}`)}
	params := []Param{{Name: "value", Kind: KindInt, Required: true}}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Equal(t, "type_error.integer", verr.Fields[0].Type)
}

func TestBindParams_nonIntegralFloat(t *testing.T) {
	req := &Request{body: []byte(`{"value":1.5}`)}
	params := []Param{{Name: "value", Kind: KindInt, Required: true}}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Equal(t, "type_error.integer", verr.Fields[0].Type)
}

func TestBindParams_intOverflow(t *testing.T) {
	req := &Request{body: []byte(`{"value":1e19}`)}
	params := []Param{{Name: "value", Kind: KindInt, Required: true}}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Equal(t, "type_error.integer", verr.Fields[0].Type)
}

func TestBindParams_coercion(t *testing.T) {
	req := &Request{body: []byte(`{"i":"7","f":"1.5","b":"true"}`)}
	params := []Param{
		{Name: "i", Kind: KindInt},
		{Name: "f", Kind: KindFloat},
		{Name: "b", Kind: KindBool},
	}

	bound, verr := bindParams(req, params, validator.New(), false)

	assert.Nil(t, verr)
	assert.Equal(t, 7, bound["i"])
	assert.Equal(t, 1.5, bound["f"])
	assert.Equal(t, true, bound["b"])
}

func TestBindParams_strict(t *testing.T) {
	req := &Request{body: []byte(`{"i":"7"}`)}
	params := []Param{{Name: "i", Kind: KindInt}}

	_, verr := bindParams(req, params, validator.New(), true)

	assert.NotNil(t, verr)
	assert.Equal(t, "type_error.integer", verr.Fields[0].Type)
}

func TestBindParams_validatorTag(t *testing.T) {
	req := &Request{body: []byte(`{"email":"not-an-email"}`)}
	params := []Param{{Name: "email", Kind: KindString, Required: true, Validate: "email"}}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Equal(t, "value_error.email", verr.Fields[0].Type)
}

func TestBindParams_invalidJSON(t *testing.T) {
	req := &Request{body: []byte(`{nope`)}
	params := []Param{{Name: "value", Kind: KindAny}}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Equal(t, "value_error.jsondecode", verr.Fields[0].Type)
}

func TestBindParams_noParamsSkipsParsing(t *testing.T) {
	req := &Request{body: []byte(`{nope`)}

	bound, verr := bindParams(req, nil, validator.New(), false)

	assert.Nil(t, verr)
	assert.Empty(t, bound)
}

func TestBindParams_collectsAllErrors(t *testing.T) {
	req := &Request{body: []byte(`{"i":"a"}`)}
	params := []Param{
		{Name: "i", Kind: KindInt, Required: true},
		{Name: "missing", Kind: KindString, Required: true},
	}

	_, verr := bindParams(req, params, validator.New(), false)

	assert.NotNil(t, verr)
	assert.Len(t, verr.Fields, 2)
}

func TestHandler_Invoke_boundParams(t *testing.T) {
	h, buf := newTestHandler()

	h.POST("/items", func(ctx *RouteContext) (interface{}, error) {
		return ctx.Int("value"), nil
	}, Body(Param{Name: "value", Kind: KindInt, Required: true}))

	response, err := h.Invoke(context.Background(), testEventWithBody(POST, "/items", `{"value":1}`))
	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, "1", response.Body)

	response, err = h.Invoke(context.Background(), testEventWithBody(POST, "/items", `{"value":"a"}`))
	assert.NoError(t, err)
	assert.Equal(t, 422, response.StatusCode)
	assert.Contains(t, response.Body, "type_error.integer")

	record := lastLogRecord(t, buf)
	assert.Equal(t, "warning", record["level"])
	assert.Equal(t, float64(422), record["status_code"])
	assert.Contains(t, record["error_detail"], "type_error.integer")
}

func TestHandler_Invoke_missingRequiredParam(t *testing.T) {
	h, buf := newTestHandler()

	h.POST("/items", func(ctx *RouteContext) (interface{}, error) {
		return ctx.Int("value"), nil
	}, Body(Param{Name: "value", Kind: KindInt, Required: true}))

	response, err := h.Invoke(context.Background(), testEventWithBody(POST, "/items", `{}`))

	assert.NoError(t, err)
	assert.Equal(t, 422, response.StatusCode)
	assert.Contains(t, response.Body, "value_error.missing")
	assert.Equal(t, float64(422), lastLogRecord(t, buf)["status_code"])
}
