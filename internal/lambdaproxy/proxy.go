// Package lambdaproxy serves an http.Handler behind an API Gateway HTTP API
// (payload format 2.0).
package lambdaproxy

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// Handler adapts h into a Lambda handler function. Request cookies arrive
// as Cookie headers and Set-Cookie headers leave in the event's Cookies;
// bodies that are not valid UTF-8 are returned base64 encoded.
func Handler(h http.Handler) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return httpadapter.NewV2(h).ProxyWithContext
}
