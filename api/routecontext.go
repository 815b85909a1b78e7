package api

import "context"

// RouteContext contains all the request information for a route when
// matched. It carries the contextual objects injected into every handler:
// the decoded request, the default response, the invocation's log context
// and the bound body parameters.
//
// Context carries the invocation deadline; handlers performing blocking work
// should honor its cancellation.
type RouteContext struct {
	Context  context.Context
	Request  *Request
	Response *Response
	Log      *LogContext
	Params   map[string]interface{}
}

// Param returns the bound body parameter with the given name, nil when
// absent.
func (ctx *RouteContext) Param(name string) interface{} {
	return ctx.Params[name]
}

// Str returns the named parameter as a string, "" when absent or not a
// string.
func (ctx *RouteContext) Str(name string) string {
	s, _ := ctx.Params[name].(string)
	return s
}

// Int returns the named parameter as an int, 0 when absent or not an int.
func (ctx *RouteContext) Int(name string) int {
	i, _ := ctx.Params[name].(int)
	return i
}

// Float returns the named parameter as a float64, 0 when absent or not a
// float.
func (ctx *RouteContext) Float(name string) float64 {
	f, _ := ctx.Params[name].(float64)
	return f
}

// Bool returns the named parameter as a bool, false when absent or not a
// bool.
func (ctx *RouteContext) Bool(name string) bool {
	b, _ := ctx.Params[name].(bool)
	return b
}

// Object returns the named parameter as a decoded json object, nil when
// absent or not an object.
func (ctx *RouteContext) Object(name string) map[string]interface{} {
	o, _ := ctx.Params[name].(map[string]interface{})
	return o
}
