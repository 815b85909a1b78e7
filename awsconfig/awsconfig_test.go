package awsconfig

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prognoshealth/lambdaapi/settings"
)

func TestClientConfigFrom(t *testing.T) {
	s := &settings.Settings{
		ConnectTimeout:     2 * time.Second,
		ReadTimeout:        7 * time.Second,
		MaxPoolConnections: 3,
	}

	config := ClientConfigFrom(s)

	assert.NotNil(t, config.HTTPClient)

	transport, ok := config.HTTPClient.Transport.(*http.Transport)
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, transport.ResponseHeaderTimeout)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 3, transport.MaxIdleConns)
	assert.NotNil(t, transport.DialContext)
}

func TestClientConfig(t *testing.T) {
	config := ClientConfig()

	assert.NotNil(t, config.HTTPClient)
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession()

	assert.NoError(t, err)
	assert.NotNil(t, sess)
}
