// Package awsconfig builds aws sdk client configuration that applies the
// process settings' outbound connection limits. Clients built from it are
// meant to be acquired once through the api bootstrap and shared across
// invocations.
package awsconfig

import (
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/prognoshealth/lambdaapi/settings"
)

// ClientConfigFrom returns an aws client configuration whose http client
// applies the given connect timeout, read timeout and pool size.
func ClientConfigFrom(s *settings.Settings) *aws.Config {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: s.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: s.ReadTimeout,
		MaxIdleConnsPerHost:   s.MaxPoolConnections,
		MaxIdleConns:          s.MaxPoolConnections,
	}

	return aws.NewConfig().WithHTTPClient(&http.Client{Transport: transport})
}

// ClientConfig returns an aws client configuration from the process-wide
// settings.
func ClientConfig() *aws.Config {
	return ClientConfigFrom(settings.Get())
}

// NewSession returns a session using the process-wide client configuration.
func NewSession() (*session.Session, error) {
	return session.NewSession(ClientConfig())
}
