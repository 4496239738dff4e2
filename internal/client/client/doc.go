// Package client is the request-capable HTTP client every farmkeeper
// component talks to the backend through.
//
// # Overview
//
// A Client is built once and is bound to an EndpointSource, not to an address:
// the base URL is read on every call, so a client constructed before the
// endpoint is loaded never bakes in an empty address. A call made while no
// endpoint is set fails with endpoint.ErrNotInitialized without touching the
// network.
//
// Credentialed calls carry "Authorization: Token <token>", read from the
// Authenticator's in-memory mirror. When such a call is answered with 401 the
// client asks the Authenticator for a new token once, retries once with it,
// and gives up after that; a call is never sent more than twice. Each logical
// call is tracked by an attempt record (see attemptState) that carries the
// retried flag and the request ID shared by both sends.
//
// # Error Handling
//
// Errors are sentinel values matched with errors.Is:
//
//   - ErrNetworkTimeout, ErrNetworkUnavailable: transport failures.
//   - ErrSessionExpired: a credentialed call ended in 401 after its retry or
//     after a failed refresh.
//   - ErrUnauthorized: matches any *StatusError with code 401.
//   - ErrAuth, ErrInvalidCredentials, ErrInvalidResponseShape, ErrInvalidInput:
//     raised by the session layer on top of this client.
//
// Other non-2xx responses are returned as *StatusError. Kind maps any of
// these to a short stable string for presentation.
//
// # Concurrency
//
// Client is safe for concurrent use. Concurrent calls rejected with the same
// token share one refresh attempt.
package client
