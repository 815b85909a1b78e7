package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// RouteHandler defines the function interface a route uses to execute a
// request when the route is matched. The returned content becomes the
// response body; returning a *Response replaces the injected response
// entirely, and returning nil content yields 204 No Content.
type RouteHandler func(*RouteContext) (interface{}, error)

// Route defines a method and exact path that are used in combination for
// matching against an incoming request, along with the handler to execute,
// the declared success status code and the body parameter descriptors built
// at registration time. Routes are read-only after registration.
type Route struct {
	Method     HttpMethod
	Path       string
	StatusCode int
	Handler    RouteHandler
	Params     []Param
}

// RouteOption configures a route at registration time.
type RouteOption func(*Route)

// Status declares the status code returned on handler success. Defaults to
// 200 (or 204 when the handler returns no content).
func Status(code int) RouteOption {
	return func(r *Route) {
		r.StatusCode = code
	}
}

// Body declares a request body field bound into the route's parameters.
func Body(p Param) RouteOption {
	return func(r *Route) {
		r.Params = append(r.Params, p)
	}
}

// NewRoute returns a Route for the specified method, path and handler. Paths
// must be absolute and static: dynamic segment markers are not supported.
func NewRoute(method HttpMethod, path string, handler RouteHandler, opts ...RouteOption) (*Route, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, errors.Errorf("path '%s' must start with '/'", path)
	}

	if strings.ContainsAny(path, "{}*:") {
		return nil, errors.Errorf("path '%s' contains dynamic segments, only exact paths are supported", path)
	}

	if handler == nil {
		return nil, errors.Errorf("no handler provided for %s \"%s\"", method, path)
	}

	route := &Route{
		Method:     method,
		Path:       path,
		StatusCode: http.StatusOK,
		Handler:    handler,
	}

	for _, opt := range opts {
		opt(route)
	}

	return route, nil
}

// String returns a string representation of this route.
func (route *Route) String() string {
	return fmt.Sprintf("%s %s", route.Method, route.Path)
}
