// Package services talks to HTTP APIs: Spotify on behalf of the server, and the server itself on behalf of the CLI.
//
// # NowPlayingService
//
// [NowPlayingService] is what the HTTP layer needs from the credential lifecycle. [SpotifyService]
// implements it for the single authorized account.
//
// # Spotify Implementation
//
// [SpotifyService] holds no token state. Every operation reads the token pair from, and writes it to,
// the [store.Store], so several server replicas sharing a store behave as one.
//
//   - Authorize compares the operator secret in constant time and builds the authorization URL with [oauth2.Config.AuthCodeURL]
//   - ExchangeCode trades a code for a token pair; nothing is written unless the provider accepts it
//   - Refresh trades the stored refresh token for a new access token; concurrent callers share one provider call
//   - NowPlaying fetches the currently playing track, refreshing and retrying at most once on 401/403
//
// Token requests use HTTP Basic client authentication. The service's [http.Client] (and its timeout) is
// passed to the oauth2 package through the [oauth2.HTTPClient] context key.
//
// # API Client
//
// [APIService] is the CLI's client for a running server: now playing, the authorize URL and the request counter.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrUnauthorized] : the supplied operator secret didn't match
//   - [shared.ErrBadRequest] : the callback carried no code
//   - [shared.ErrUpstream] : Spotify rejected or failed a request
//   - [shared.ErrNoRefreshToken] : a refresh was needed before any authorization (wrapped with ErrUpstream)
//   - [shared.ErrAPIRequest] : a request to the nowplaying server failed
package services
