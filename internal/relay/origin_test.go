package relay

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCheckOriginAllowsConfiguredFrontend(t *testing.T) {
	resetConfigAfter(t)
	SetConfig(&Config{AllowedOrigins: []string{"https://crm.example.com"}})

	assert.True(t, checkOrigin(requestWithOrigin("https://crm.example.com")))
	assert.True(t, checkOrigin(requestWithOrigin("HTTPS://CRM.EXAMPLE.COM/some/page")),
		"comparison is case and path insensitive")
}

func TestCheckOriginBlocksUnknownOrigin(t *testing.T) {
	resetConfigAfter(t)
	SetConfig(&Config{AllowedOrigins: []string{"https://crm.example.com"}})

	assert.False(t, checkOrigin(requestWithOrigin("https://evil.example.com")))
}

func TestCheckOriginBlocksMissingHeader(t *testing.T) {
	resetConfigAfter(t)
	SetConfig(&Config{AllowedOrigins: []string{"https://crm.example.com"}})

	assert.False(t, checkOrigin(requestWithOrigin("")))
}

func TestCheckOriginWildcardAllowsAll(t *testing.T) {
	resetConfigAfter(t)
	SetConfig(&Config{AllowedOrigins: []string{"*"}})

	assert.True(t, checkOrigin(requestWithOrigin("https://anything.example.net")))
}

func TestNormalizeOriginRejectsInvalidValues(t *testing.T) {
	for _, origin := range []string{"not a url", "example.com", "://missing-scheme"} {
		_, ok := normalizeOrigin(origin)
		assert.False(t, ok, "expected %q to be rejected", origin)
	}
}
