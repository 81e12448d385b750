// Package server provides HTTP routing, middleware and the handlers of the nowplaying API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// A middleware only wraps routes registered after it was added, which lets [New] rate limit the public
// endpoints while leaving /healthz and /metrics alone.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	GET /requests                   increments and returns the request counter
//	GET /spotify_api/authorize      returns the provider authorization URL for the operator secret
//	GET /spotify_api/callback       exchanges the authorization code and stores the token pair
//	GET /spotify_api/now_playing    returns the currently playing snapshot
//	GET /healthz                    reports whether the credential store answers
//	GET /metrics                    Prometheus exposition
//
// Errors are JSON objects with a single "detail" field.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
