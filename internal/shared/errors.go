package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Request errors, mapped to HTTP status codes by the server
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrBadRequest   = fmt.Errorf("bad request")
	ErrUpstream     = fmt.Errorf("spotify api returned a non-OK status code")

	// Credential lifecycle errors
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// CLI errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
)
