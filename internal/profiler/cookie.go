package profiler

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	APIKeyCookieName     = "x_api_key"
	APIKeyCookieDuration = time.Hour
	APIKeyCookiePath     = "/"
)

// CookieOptions overrides the defaults used by CookieManager.SetWithOptions.
// Nil fields keep their defaults.
type CookieOptions struct {
	Duration *time.Duration
	Path     *string
	HTTPOnly *bool
	Secure   *bool
	SameSite http.SameSite
	Domain   string
}

// CookieManager reads and writes the API key handshake cookie.
type CookieManager struct{}

func NewCookieManager() *CookieManager {
	return &CookieManager{}
}

// Get returns the cookie value, or "" when absent or unreadable.
func (m *CookieManager) Get(r *http.Request) string {
	if r == nil {
		return ""
	}

	c, err := r.Cookie(APIKeyCookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			log.Printf("Failed to get API key cookie: %v", err)
		}
		return ""
	}

	return c.Value
}

func (m *CookieManager) Exists(r *http.Request) bool {
	return m.Get(r) != ""
}

// Set writes the cookie with the default attributes. The cookie is readable
// from JavaScript so the toolbar can send the key back.
func (m *CookieManager) Set(w http.ResponseWriter, r *http.Request, value string) bool {
	return m.SetWithOptions(w, r, value, CookieOptions{})
}

func (m *CookieManager) SetWithOptions(w http.ResponseWriter, r *http.Request, value string, opts CookieOptions) bool {
	if w == nil {
		log.Printf("Failed to set API key cookie: no response writer")
		return false
	}

	duration := APIKeyCookieDuration
	if opts.Duration != nil {
		duration = *opts.Duration
	}
	path := APIKeyCookiePath
	if opts.Path != nil {
		path = *opts.Path
	}
	httpOnly := false
	if opts.HTTPOnly != nil {
		httpOnly = *opts.HTTPOnly
	}
	secure := IsSecureRequest(r)
	if opts.Secure != nil {
		secure = *opts.Secure
	}
	sameSite := http.SameSiteLaxMode
	if opts.SameSite != 0 {
		sameSite = opts.SameSite
	}

	cookie := &http.Cookie{
		Name:     APIKeyCookieName,
		Value:    value,
		Path:     path,
		Domain:   opts.Domain,
		MaxAge:   int(duration.Seconds()),
		Expires:  time.Now().Add(duration),
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: sameSite,
	}

	if err := cookie.Valid(); err != nil {
		log.Printf("Failed to set API key cookie: %v", err)
		return false
	}

	http.SetCookie(w, cookie)
	return true
}

// Delete expires the named cookie, or the API key cookie when name is empty.
func (m *CookieManager) Delete(w http.ResponseWriter, name string) bool {
	if w == nil {
		return false
	}
	if name == "" {
		name = APIKeyCookieName
	}

	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    APIKeyCookiePath,
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	return true
}

// CookieDebugInfo describes the cookie state of a request.
type CookieDebugInfo struct {
	CookieName         string `json:"cookie_name"`
	Exists             bool   `json:"exists"`
	ValueLength        int    `json:"value_length"`
	IsSecureConnection bool   `json:"is_secure_connection"`
	CurrentDomain      string `json:"current_domain"`
	CurrentPath        string `json:"current_path"`
}

func (m *CookieManager) DebugInfo(r *http.Request) CookieDebugInfo {
	value := m.Get(r)
	return CookieDebugInfo{
		CookieName:         APIKeyCookieName,
		Exists:             value != "",
		ValueLength:        len(value),
		IsSecureConnection: IsSecureRequest(r),
		CurrentDomain:      r.Host,
		CurrentPath:        r.URL.RequestURI(),
	}
}

// IsSecureRequest detects HTTPS directly or behind a reverse proxy.
func IsSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	if _, port, err := net.SplitHostPort(r.Host); err == nil && port == "443" {
		return true
	}
	return false
}
