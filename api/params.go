package api

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// maxExactInt is the largest integer a float64 carries exactly. Decoded
// json numbers beyond it cannot round-trip and are rejected for int fields.
const maxExactInt = 1 << 53

// ParamKind identifies the expected shape of a request body field.
type ParamKind int

const (
	KindAny ParamKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindObject
)

// Param describes a single handler argument extracted from the decoded
// request body by matching Name as a key. Required fields that are absent
// fail binding with a 422 ValidationError. Validate holds an optional
// go-playground/validator tag applied to the coerced value.
type Param struct {
	Name     string
	Kind     ParamKind
	Required bool
	Validate string
}

// bindParams decodes the request body once and extracts every declared
// parameter, coercing each value to its declared kind. In strict mode
// cross-type coercion (such as numeric strings for int fields) is rejected.
// All field errors are collected into a single ValidationError.
func bindParams(req *Request, params []Param, validate *validator.Validate, strict bool) (map[string]interface{}, *ValidationError) {
	bound := make(map[string]interface{}, len(params))
	if len(params) == 0 {
		return bound, nil
	}

	body, err := req.JSON()
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "value is not valid json",
			Type: "value_error.jsondecode",
		}}}
	}

	var fields []FieldError

	for _, param := range params {
		value, ok := body[param.Name]
		if !ok {
			if param.Required {
				fields = append(fields, FieldError{
					Loc:  []string{"body", param.Name},
					Msg:  "field required",
					Type: "value_error.missing",
				})
			}
			continue
		}

		coerced, fieldErr := coerceParam(param, value, strict)
		if fieldErr != nil {
			fields = append(fields, *fieldErr)
			continue
		}

		if param.Validate != "" {
			if err := validate.Var(coerced, param.Validate); err != nil {
				fields = append(fields, validatorFieldErrors(param, err)...)
				continue
			}
		}

		bound[param.Name] = coerced
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return bound, nil
}

// coerceParam converts a decoded json value to the param's declared kind.
// encoding/json decodes all numbers as float64, so integer fields accept any
// integral float64.
func coerceParam(param Param, value interface{}, strict bool) (interface{}, *FieldError) {
	switch param.Kind {
	case KindAny:
		return value, nil

	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, typeError(param, "str type expected", "str")

	case KindInt:
		if f, ok := value.(float64); ok && f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return int(f), nil
		}
		if s, ok := value.(string); ok && !strict {
			if i, err := strconv.Atoi(s); err == nil {
				return i, nil
			}
		}
		return nil, typeError(param, "value is not a valid integer", "integer")

	case KindFloat:
		if f, ok := value.(float64); ok {
			return f, nil
		}
		if s, ok := value.(string); ok && !strict {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, nil
			}
		}
		return nil, typeError(param, "value is not a valid float", "float")

	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		if s, ok := value.(string); ok && !strict {
			if b, err := strconv.ParseBool(s); err == nil {
				return b, nil
			}
		}
		return nil, typeError(param, "value is not a valid boolean", "bool")

	case KindObject:
		if o, ok := value.(map[string]interface{}); ok {
			return o, nil
		}
		return nil, typeError(param, "value is not a valid dict", "dict")
	}

	return nil, typeError(param, "unsupported parameter kind", "unsupported")
}

func typeError(param Param, msg string, kind string) *FieldError {
	return &FieldError{
		Loc:  []string{"body", param.Name},
		Msg:  msg,
		Type: "type_error." + kind,
	}
}

func validatorFieldErrors(param Param, err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{
			Loc:  []string{"body", param.Name},
			Msg:  err.Error(),
			Type: "value_error",
		}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, verr := range verrs {
		fields = append(fields, FieldError{
			Loc:  []string{"body", param.Name},
			Msg:  fmt.Sprintf("failed '%s' validation", verr.Tag()),
			Type: "value_error." + verr.Tag(),
		})
	}

	return fields
}
