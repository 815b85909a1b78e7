package api

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func testHandler(ctx *RouteContext) (interface{}, error) {
	return "ok", nil
}

func testEvent(method HttpMethod, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Headers: map[string]string{},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "gateway-request-id",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method.String(),
			},
		},
	}
}

func testEventWithBody(method HttpMethod, path string, body string) events.APIGatewayV2HTTPRequest {
	event := testEvent(method, path)
	event.Body = body
	return event
}

// newTestHandler returns a handler whose access log is captured in the
// returned buffer.
func newTestHandler() (*Handler, *bytes.Buffer) {
	h := New()
	buf := &bytes.Buffer{}
	h.Log.SetOutput(buf)
	return h, buf
}

func lastLogRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.NotEmpty(t, lines)

	record := map[string]interface{}{}
	err := json.Unmarshal(lines[len(lines)-1], &record)
	assert.NoError(t, err)

	return record
}

func logRecordCount(buf *bytes.Buffer) int {
	trimmed := bytes.TrimSpace(buf.Bytes())
	if len(trimmed) == 0 {
		return 0
	}

	return len(bytes.Split(trimmed, []byte("\n")))
}
