package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/client/endpoint"
	"github.com/tidwall/gjson"
)

var (
	ErrNetworkTimeout     = errors.New("network timeout")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionExpired     = errors.New("session expired")

	// ErrNoCredential is returned by an Authenticator asked to refresh a
	// request that was sent without a token when it has none to offer.
	ErrNoCredential = errors.New("no credential")

	// ErrAuth is the parent of all authentication failures.
	ErrAuth                 = errors.New("auth error")
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrInvalidResponseShape = fmt.Errorf("%w: invalid response shape", ErrAuth)

	// ErrInvalidInput reports input rejected locally before any request.
	ErrInvalidInput = errors.New("invalid input")
)

// StatusError is a non-2xx response surfaced to the caller as is.
type StatusError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func newStatusError(resp *Response) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode,
		Detail:     Detail(resp.Body),
		Body:       resp.Body,
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is makes a 401 StatusError match ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Detail extracts a human readable message from a backend error body:
// "detail", then the first "non_field_errors" entry, then "message".
func Detail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"detail", "non_field_errors.0", "message", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// Kind classifies err for presentation. It returns "" for nil and
// "unknown" for errors outside the taxonomy.
func Kind(err error) string {
	var statusErr *StatusError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, endpoint.ErrInvalidEndpoint):
		return "invalid_endpoint"
	case errors.Is(err, endpoint.ErrNotInitialized):
		return "endpoint_not_initialized"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidResponseShape):
		return "invalid_response_shape"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrNetworkTimeout):
		return "network_timeout"
	case errors.Is(err, ErrNetworkUnavailable):
		return "network_unavailable"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &statusErr):
		return "http_status"
	default:
		return "unknown"
	}
}
