package endpoint

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

const (
	// DefaultPort is used for bare hosts entered without a port.
	DefaultPort = "8000"

	apiSuffix = "/api/"
)

// Normalize converts a raw user-supplied value into a base address.
// Values containing "://" are treated as URLs and must use http or https;
// anything else is treated as a host, optionally with a port.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidEndpoint)
	}

	if strings.Contains(raw, "://") {
		return normalizeURL(raw)
	}
	return normalizeHost(raw)
}

func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, raw)
	}

	path := strings.TrimRight(u.Path, "/")
	path = strings.TrimSuffix(path, "/api")

	return scheme + "://" + u.Host + path + apiSuffix, nil
}

func normalizeHost(raw string) (string, error) {
	if strings.ContainsAny(raw, "/?# \t") {
		return "", fmt.Errorf("%w: %q is neither a host nor a URL", ErrInvalidEndpoint, raw)
	}

	host, port := raw, DefaultPort
	if h, p, err := net.SplitHostPort(raw); err == nil {
		if h == "" || p == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, raw)
		}
		host, port = h, p
	}

	return "http://" + net.JoinHostPort(host, port) + apiSuffix, nil
}

// ValidateIPv4 reports whether raw is a dotted-quad IPv4 address with octets
// in 0-255 and no leading zeros. Callers that want strict IP entry apply it
// before handing the value to the Registry, which itself accepts any host.
func ValidateIPv4(raw string) error {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil || !addr.Is4() {
		return fmt.Errorf("%w: %q is not a valid IPv4 address", ErrInvalidEndpoint, raw)
	}
	return nil
}
