package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare ipv4", "192.168.1.100", "http://192.168.1.100:8000/api/"},
		{"bare ipv4 with spaces", "  10.0.0.7 ", "http://10.0.0.7:8000/api/"},
		{"host with port", "192.168.1.100:9000", "http://192.168.1.100:9000/api/"},
		{"hostname", "farm.local", "http://farm.local:8000/api/"},
		{"bare ipv6", "::1", "http://[::1]:8000/api/"},
		{"https url", "https://x.y", "https://x.y/api/"},
		{"https url trailing slash", "https://x.y/", "https://x.y/api/"},
		{"http url with port", "http://10.0.0.1:8080", "http://10.0.0.1:8080/api/"},
		{"url already ending in api", "https://x.y/api/", "https://x.y/api/"},
		{"url with base path", "https://x.y/farm//", "https://x.y/farm/api/"},
		{"upper-case scheme", "HTTPS://x.y", "https://x.y/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"ftp://x.y",
		"ws://x.y",
		"http://",
		"host:",
		"host/path",
		"two words",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Normalize(raw)
			require.ErrorIs(t, err, ErrInvalidEndpoint)
		})
	}
}

func TestValidateIPv4(t *testing.T) {
	for _, ok := range []string{"0.0.0.0", "192.168.1.100", "255.255.255.255", " 10.0.0.1 "} {
		assert.NoError(t, ValidateIPv4(ok), ok)
	}
	for _, bad := range []string{"", "256.1.1.1", "1.2.3", "1.2.3.4.5", "01.2.3.4", "::1", "farm.local", "https://1.2.3.4"} {
		assert.ErrorIs(t, ValidateIPv4(bad), ErrInvalidEndpoint, bad)
	}
}
