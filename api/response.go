package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// JSONMediaType is the default response media type.
const JSONMediaType = "application/json"

// Response is the outbound response under construction. A default instance
// is injected into every handler via the RouteContext; handlers may mutate
// the status code and headers, or return their own Response to replace the
// injected one entirely. It is finalized by Render and must not be reused
// across invocations.
type Response struct {
	StatusCode int
	Headers    map[string]string
	MediaType  string
	Content    interface{}
}

// NewResponse returns an empty json response with the given status code.
func NewResponse(statusCode int) *Response {
	return &Response{
		StatusCode: statusCode,
		Headers:    map[string]string{},
		MediaType:  JSONMediaType,
	}
}

// NewRawResponse returns a 200 response carrying content verbatim with the
// given media type. Byte content is transported base64-encoded.
func NewRawResponse(content interface{}, mediaType string) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{},
		MediaType:  mediaType,
		Content:    content,
	}
}

// Render finalizes the response into an api gateway compatible event.
//
// A nil content with status 200 is rendered as 204 No Content. A nil content
// with an error status gets the standard status text as body. Byte content
// is base64-encoded and flagged as such on the event; any other content is
// serialized with the configured media type's codec (json by default). The
// content-length and content-type headers are set from the rendered payload
// and the correlation id, when known, is echoed as x-request-id.
func (r *Response) Render(correlationID string) (events.APIGatewayProxyResponse, error) {
	statusCode := r.StatusCode
	content := r.Content

	if content == nil {
		if statusCode == http.StatusOK {
			statusCode = http.StatusNoContent
		} else if statusCode >= 400 {
			content = map[string]interface{}{"details": http.StatusText(statusCode)}
		}
	}

	var body string
	isBase64 := false

	if content != nil {
		raw, encoded, err := r.renderContent(content)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}

		r.Headers["content-length"] = strconv.Itoa(len(raw))
		if r.MediaType != "" {
			r.Headers["content-type"] = r.MediaType
		}

		if encoded {
			body = base64.StdEncoding.EncodeToString(raw)
			isBase64 = true
		} else {
			body = string(raw)
		}
	}

	if correlationID != "" {
		r.Headers[CorrelationHeader] = correlationID
	}

	return events.APIGatewayProxyResponse{
		StatusCode:      statusCode,
		Headers:         r.Headers,
		Body:            body,
		IsBase64Encoded: isBase64,
	}, nil
}

// renderContent serializes content to the wire payload. The bool result
// reports whether the payload must be base64-encoded for transport.
func (r *Response) renderContent(content interface{}) ([]byte, bool, error) {
	switch c := content.(type) {
	case []byte:
		return c, true, nil
	case string:
		if r.MediaType != JSONMediaType {
			return []byte(c), false, nil
		}
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed rendering response content of type %T", content)
	}

	return raw, false, nil
}
