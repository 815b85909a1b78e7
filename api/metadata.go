package api

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// LambdaMetaData stores the details of the current lambda invocation the
// dispatcher consumes: the function identity recorded on access log records
// and the per-invocation request id used as a correlation fallback.
type LambdaMetaData struct {
	FunctionName    string
	FunctionVersion string
	Context         *lambdacontext.LambdaContext
}

// GetLambdaMetaData returns MetaData extracted from the current lambda
// context.
func GetLambdaMetaData(ctx context.Context) LambdaMetaData {
	lm := LambdaMetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
	}

	lm.Context, _ = lambdacontext.FromContext(ctx)
	return lm
}

// RequestID returns the invocation's aws request id, "" when not running
// under the lambda runtime.
func (lm LambdaMetaData) RequestID() string {
	if lm.Context == nil {
		return ""
	}

	return lm.Context.AwsRequestID
}
