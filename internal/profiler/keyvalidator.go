package profiler

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

const (
	APIKeyHeader     = "X-Debug-Api-Key"
	APIKeyQueryParam = "api_key"
)

// CookieReader reads the handshake cookie from a request.
type CookieReader interface {
	Get(r *http.Request) string
}

type KeyValidator struct {
	cookies CookieReader
}

func NewKeyValidator(cookies CookieReader) *KeyValidator {
	return &KeyValidator{cookies: cookies}
}

// Validate decides whether the request carries the configured API key.
func (v *KeyValidator) Validate(s settings.Settings, r *http.Request) bool {
	if !s.APIKeyEnabled {
		return true
	}

	if !s.HasAPIKey() {
		return false
	}

	candidate := v.Candidate(r)
	if candidate == "" {
		return false
	}

	return ValidateKey(s.APIKey, candidate)
}

// Candidate resolves the caller's key: header, then query parameter, then cookie.
func (v *KeyValidator) Candidate(r *http.Request) string {
	if r == nil {
		return ""
	}

	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}

	// query and cookie values are compared exactly as sent
	if key := r.URL.Query().Get(APIKeyQueryParam); key != "" {
		return key
	}

	if v.cookies != nil {
		return v.cookies.Get(r)
	}

	return ""
}

// ValidateKey compares two keys in constant time. Both sides are hashed first
// so the comparison does not depend on either key's length.
func ValidateKey(configured, candidate string) bool {
	if configured == "" || candidate == "" {
		return false
	}

	want := sha256.Sum256([]byte(configured))
	got := sha256.Sum256([]byte(candidate))

	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}
