// Package common contains constants and small helpers shared by the
// gateway, the session store and the CLI.
package common

const (
	// AuthorizationHeader carries the bearer credential on authenticated
	// gateway requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the opaque token in AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader tags every outbound gateway request so backend logs
	// can be correlated with client logs.
	RequestIDHeader = "X-Request-ID"

	// ContentTypeJSON is sent with every request body.
	ContentTypeJSON = "application/json"
)
