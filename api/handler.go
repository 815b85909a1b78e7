package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/lambdaapi/settings"
)

// deadlineMargin is subtracted from the lambda context deadline so the
// timeout response can be rendered and logged before the runtime kills the
// invocation.
const deadlineMargin = 500 * time.Millisecond

// Handler dispatches api gateway events to registered routes and converts
// their results into api gateway responses.
//
// Routes are registered once at process start, before the first invocation;
// the table is read-only afterwards. The lambda runtime never runs two
// invocations of the same process concurrently, so no locking is performed.
//
// Example:
//
//	func yolo(ctx *api.RouteContext) (interface{}, error) {
//		return map[string]interface{}{"yolo": "it's true"}, nil
//	}
//
//	func main() {
//		h := api.New()
//		h.GET("/yolo", yolo)
//		h.Start()
//	}
type Handler struct {
	// Settings is the process configuration the dispatcher runs under. It
	// is a copy of the environment-sourced settings and may be adjusted
	// before Start.
	Settings *settings.Settings

	// Log is the sink the access log records are written to. One JSON
	// record per invocation is emitted to stdout by default.
	Log *logrus.Logger

	routes   map[string]map[HttpMethod]*Route
	errors   []error
	validate *validator.Validate
	releases []ReleaseFunc
}

// New returns an empty Handler using the process-wide settings.
func New() *Handler {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	s := *settings.Get()

	return &Handler{
		Settings: &s,
		Log:      log,
		routes:   map[string]map[HttpMethod]*Route{},
		validate: validator.New(),
	}
}

// AddRoute inserts route into the route table. Registering a (method, path)
// pair twice is a configuration error and leaves the existing entry
// untouched.
func (h *Handler) AddRoute(route *Route) error {
	byMethod, ok := h.routes[route.Path]
	if !ok {
		byMethod = map[HttpMethod]*Route{}
		h.routes[route.Path] = byMethod
	}

	if _, ok := byMethod[route.Method]; ok {
		return errors.Errorf("route already registered: %s \"%s\"", route.Method, route.Path)
	}

	byMethod[route.Method] = route
	return nil
}

// AddBuildError appends an error to the list of handler build errors.
func (h *Handler) AddBuildError(err error) {
	h.errors = append(h.errors, err)
}

// AddRouteIfNoError adds the provided route if no error is present.
// Otherwise it adds the error to the build errors.
//
// This method is provided to simplify handler construction with many routes
// by reducing error checking boilerplate.
func (h *Handler) AddRouteIfNoError(route *Route, err error) {
	if err != nil {
		h.AddBuildError(err)
		return
	}

	if err := h.AddRoute(route); err != nil {
		h.AddBuildError(err)
	}
}

// Valid returns true if all routes have been registered successfully.
// Otherwise false.
func (h *Handler) Valid() bool {
	return len(h.errors) == 0
}

// BuildErrors returns a single error that encapsulates all the route errors
// found during handler construction.
func (h *Handler) BuildErrors() error {
	topError := errors.New("failed building handler")

	for _, err := range h.errors {
		topError = errors.Wrap(topError, err.Error())
	}

	return topError
}

// GET registers a GET route with the specified exact path and handler.
func (h *Handler) GET(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(GET, path, fn, opts...))
}

// HEAD registers a HEAD route with the specified exact path and handler.
func (h *Handler) HEAD(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(HEAD, path, fn, opts...))
}

// POST registers a POST route with the specified exact path and handler.
func (h *Handler) POST(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(POST, path, fn, opts...))
}

// PUT registers a PUT route with the specified exact path and handler.
func (h *Handler) PUT(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(PUT, path, fn, opts...))
}

// DELETE registers a DELETE route with the specified exact path and handler.
func (h *Handler) DELETE(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(DELETE, path, fn, opts...))
}

// OPTIONS registers an OPTIONS route with the specified exact path and
// handler.
func (h *Handler) OPTIONS(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(OPTIONS, path, fn, opts...))
}

// PATCH registers a PATCH route with the specified exact path and handler.
func (h *Handler) PATCH(path string, fn RouteHandler, opts ...RouteOption) {
	h.AddRouteIfNoError(NewRoute(PATCH, path, fn, opts...))
}

// resolve looks up the route for the given method and path by exact match.
// An unknown path yields a 404, a known path with an unregistered method a
// 405.
func (h *Handler) resolve(method HttpMethod, path string) (*Route, *HTTPError) {
	byMethod, ok := h.routes[path]
	if !ok {
		return nil, NewHTTPError(http.StatusNotFound, nil)
	}

	route, ok := byMethod[method]
	if !ok {
		return nil, NewHTTPError(http.StatusMethodNotAllowed, nil)
	}

	return route, nil
}

// Invoke processes a single api gateway event through the full request
// lifecycle: decode, route, bind, execute under the deadline, render and
// log. Exactly one access log record is emitted per call.
//
// Shaped faults (routing, validation, HTTPError, timeout) are rendered as
// http responses and never returned as errors. Any other handler fault is
// logged with full diagnostic detail and returned unchanged, leaving the
// gateway's own fault mapping to answer the caller.
func (h *Handler) Invoke(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	lctx := newLogContext()
	lctx.Set("instance_id", InstanceID())
	lctx.Set("method", event.RequestContext.HTTP.Method)
	lctx.Set("path", event.RawPath)

	if meta := GetLambdaMetaData(ctx); meta.FunctionName != "" {
		lctx.Set("function_name", meta.FunctionName)
		lctx.Set("function_version", meta.FunctionVersion)
	}

	response, err := h.invoke(ctx, event, lctx)

	lctx.Set("execution_time_ms", float64(time.Since(start).Nanoseconds())/1e6)
	h.emit(lctx, err)

	return response, err
}

func (h *Handler) invoke(ctx context.Context, event events.APIGatewayV2HTTPRequest, lctx *LogContext) (events.APIGatewayProxyResponse, error) {
	request, err := NewRequest(ctx, event)
	if err != nil {
		fault := NewHTTPError(http.StatusBadRequest, nil).WithErrorDetail(err.Error())
		return h.renderFault(fault, "", lctx), nil
	}

	lctx.Set("request_id", request.CorrelationID)
	if ua := request.Header("user-agent"); ua != "" {
		lctx.Set("user_agent", ua)
	}

	route, fault := h.resolve(request.Method, request.Path)
	if fault != nil {
		return h.renderFault(fault, request.CorrelationID, lctx), nil
	}

	params, bindErr := bindParams(request, route.Params, h.validate, h.Settings.StrictParams)
	if bindErr != nil {
		return h.renderValidation(bindErr, request.CorrelationID, lctx), nil
	}

	rctx := &RouteContext{
		Context:  ctx,
		Request:  request,
		Response: NewResponse(route.StatusCode),
		Log:      lctx,
		Params:   params,
	}

	content, err := h.execute(ctx, route, rctx)
	if err != nil {
		switch fault := err.(type) {
		case *HTTPError:
			return h.renderFault(fault, request.CorrelationID, lctx), nil
		case *ValidationError:
			return h.renderValidation(fault, request.CorrelationID, lctx), nil
		default:
			return h.unclassified(err, lctx)
		}
	}

	response := rctx.Response
	if custom, ok := content.(*Response); ok {
		response = custom
	} else {
		response.Content = content
	}

	rendered, err := response.Render(request.CorrelationID)
	if err != nil {
		return h.unclassified(err, lctx)
	}

	lctx.Set("status_code", rendered.StatusCode)
	return rendered, nil
}

// execute runs the route handler under the invocation deadline. The
// deadline is the configured function timeout, clamped to the lambda
// context's remaining time minus a safety margin. On expiry the handler
// goroutine is signaled through its context and abandoned; its in-flight
// side effects are not rolled back.
func (h *Handler) execute(ctx context.Context, route *Route, rctx *RouteContext) (interface{}, error) {
	timeout := h.Settings.FunctionTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline) - deadlineMargin; remaining < timeout {
			timeout = remaining
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	rctx.Context = execCtx

	type result struct {
		content interface{}
		err     error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: errors.Errorf("handler panic: %v", r)}
			}
		}()

		content, err := route.Handler(rctx)
		done <- result{content: content, err: err}
	}()

	select {
	case r := <-done:
		return r.content, r.err
	case <-execCtx.Done():
		fault := NewHTTPError(http.StatusGatewayTimeout, nil).
			WithErrorDetail(fmt.Sprintf("handler exceeded deadline of %s for %v", timeout, route))
		return nil, fault
	}
}

// renderFault renders an HTTPError as a shaped response. The client sees
// {"detail": ...}; the server-only diagnostic goes to the access log only.
func (h *Handler) renderFault(fault *HTTPError, correlationID string, lctx *LogContext) events.APIGatewayProxyResponse {
	if detail := fault.LogDetail(); detail != "" {
		lctx.Set("error_detail", detail)
	}

	response := NewResponse(fault.StatusCode)
	response.Content = map[string]interface{}{"detail": fault.ClientDetail()}
	for k, v := range fault.Headers {
		response.Headers[k] = v
	}

	rendered, err := response.Render(correlationID)
	if err != nil {
		// Unserializable fault detail. Fall back to the bare status.
		rendered = events.APIGatewayProxyResponse{StatusCode: fault.StatusCode}
	}

	lctx.Set("status_code", rendered.StatusCode)
	return rendered
}

// renderValidation renders a ValidationError as a 422 with the structured
// field errors as body.
func (h *Handler) renderValidation(fault *ValidationError, correlationID string, lctx *LogContext) events.APIGatewayProxyResponse {
	if raw, err := json.Marshal(fault.Fields); err == nil {
		lctx.Set("error_detail", string(raw))
	}

	response := NewResponse(http.StatusUnprocessableEntity)
	response.Content = map[string]interface{}{"detail": fault.Fields}

	rendered, err := response.Render(correlationID)
	if err != nil {
		rendered = events.APIGatewayProxyResponse{StatusCode: http.StatusUnprocessableEntity}
	}

	lctx.Set("status_code", rendered.StatusCode)
	return rendered
}

// unclassified records a fault that is not part of the http taxonomy and
// propagates it unchanged to the caller.
func (h *Handler) unclassified(err error, lctx *LogContext) (events.APIGatewayProxyResponse, error) {
	lctx.Set("status_code", http.StatusInternalServerError)
	lctx.Set("error_detail", fmt.Sprintf("%+v", errors.WithStack(err)))
	lctx.Set("fault", "unclassified")

	return events.APIGatewayProxyResponse{}, err
}

// emit writes the invocation's access log record, exactly once. The level
// follows the status code; unclassified faults always log at error level.
func (h *Handler) emit(lctx *LogContext, unclassified error) {
	entry := h.Log.WithFields(lctx.Fields())

	switch {
	case unclassified != nil:
		entry.Error("unhandled fault")
	case lctx.statusCode() >= 500:
		entry.Error("server error")
	case lctx.statusCode() >= 400:
		entry.Warn("client error")
	default:
		entry.Info("request completed")
	}
}

// InvokeREST processes a rest api (payload v1) event by adapting it to the
// http api shape and running the same lifecycle.
func (h *Handler) InvokeREST(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.Invoke(ctx, events.APIGatewayV2HTTPRequest{
		RawPath:         event.Path,
		Headers:         event.Headers,
		Body:            event.Body,
		IsBase64Encoded: event.IsBase64Encoded,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: event.RequestContext.RequestID,
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: event.HTTPMethod,
				Path:   event.Path,
			},
		},
	})
}

// Start hands the dispatcher to the lambda runtime. It panics if the route
// table failed to build: a handler with build errors must not serve traffic.
func (h *Handler) Start() {
	if !h.Valid() {
		panic(h.BuildErrors())
	}

	lambda.Start(h.Invoke)
}
