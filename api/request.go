package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// CorrelationHeader is the inbound header consulted for the request
// correlation id. When absent the gateway request context's request id is
// used, then the lambda invocation request id.
const CorrelationHeader = "x-request-id"

// Request is the decoded inbound request. It is constructed once per
// invocation and must not be mutated afterwards.
type Request struct {
	Method        HttpMethod
	Path          string
	Headers       map[string]string
	CorrelationID string

	body       []byte
	jsonParsed bool
	jsonBody   map[string]interface{}
	jsonErr    error
}

// NewRequest decodes the api gateway event into a Request. Header keys are
// normalized to lowercase and base64-encoded bodies are decoded.
func NewRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*Request, error) {
	method, err := ParseMethod(event.RequestContext.HTTP.Method)
	if err != nil {
		return nil, errors.Wrap(err, "failed decoding request method")
	}

	headers := make(map[string]string, len(event.Headers))
	for k, v := range event.Headers {
		headers[strings.ToLower(k)] = v
	}

	var body []byte
	if event.Body != "" {
		if event.IsBase64Encoded {
			body, err = base64.StdEncoding.DecodeString(event.Body)
			if err != nil {
				return nil, errors.Wrap(err, "failed decoding base64 request body")
			}
		} else {
			body = []byte(event.Body)
		}
	}

	return &Request{
		Method:        method,
		Path:          event.RawPath,
		Headers:       headers,
		CorrelationID: correlationID(ctx, event, headers),
		body:          body,
	}, nil
}

func correlationID(ctx context.Context, event events.APIGatewayV2HTTPRequest, headers map[string]string) string {
	if id := headers[CorrelationHeader]; id != "" {
		return id
	}

	if id := event.RequestContext.RequestID; id != "" {
		return id
	}

	return GetLambdaMetaData(ctx).RequestID()
}

// Header returns the value for the given header name, matched
// case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// Body returns the raw request body, nil when absent.
func (r *Request) Body() []byte {
	return r.body
}

// JSON returns the request body decoded as a JSON object. The body is parsed
// once and the result reused across calls. A missing body or a body that is
// not a JSON object yields a nil map.
func (r *Request) JSON() (map[string]interface{}, error) {
	if r.jsonParsed {
		return r.jsonBody, r.jsonErr
	}
	r.jsonParsed = true

	if len(r.body) == 0 {
		return nil, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(r.body, &decoded); err != nil {
		r.jsonErr = errors.Wrap(err, "failed decoding json request body")
		return nil, r.jsonErr
	}

	if obj, ok := decoded.(map[string]interface{}); ok {
		r.jsonBody = obj
	}

	return r.jsonBody, nil
}
