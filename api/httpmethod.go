package api

import "github.com/pkg/errors"

// HttpMethod is an enum of the standard Http Methods.
type HttpMethod int

const (
	GET HttpMethod = iota
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

var methodNames = [...]string{
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	CONNECT: "CONNECT",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	PATCH:   "PATCH",
}

// String returns the wire representation of the method.
func (m HttpMethod) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return "UNKNOWN"
	}

	return methodNames[m]
}

// ParseMethod returns the HttpMethod matching the wire representation name.
func ParseMethod(name string) (HttpMethod, error) {
	for m, n := range methodNames {
		if n == name {
			return HttpMethod(m), nil
		}
	}

	return 0, errors.Errorf("unknown http method '%s'", name)
}
