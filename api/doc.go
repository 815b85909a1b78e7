// Package api provides a request routing and response building layer for aws
// lambda functions that act as aws api gateway v2 (http) integrations. It
// dispatches incoming events.APIGatewayV2HTTPRequest payloads to registered
// handlers and converts their results (or faults) into
// events.APIGatewayProxyResponse payloads, emitting one structured access log
// record per invocation.
//
// The router is designed to be as simplistic as possible and is not feature
// rich: paths are matched by exact string comparison only.
package api
