package profiler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
)

func injectSettings() settings.Settings {
	return settings.Settings{
		Enabled:              true,
		HeaderKey:            settings.DefaultHeaderKey,
		HTMLOutputEnabled:    true,
		JSONInjectionEnabled: true,
		ToolbarEnabled:       true,
	}
}

func TestInjectJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"object", `{"a":1}`, `{"a":1,"_profiler":{"x":2}}`, true},
		{"empty object", `{}`, `{"_profiler":{"x":2}}`, true},
		{"whitespace", "  {\"a\":1}\n", `{"a":1,"_profiler":{"x":2}}`, true},
		{"existing key replaced", `{"_profiler":"old","a":1}`, `{"_profiler":{"x":2},"a":1}`, true},
		{"array", `[1,2]`, `[1,2]`, false},
		{"scalar", `"text"`, `"text"`, false},
		{"malformed", `{"a":`, `{"a":`, false},
		{"empty", ``, ``, false},
	}

	payload := map[string]int{"x": 2}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InjectJSON([]byte(tt.body), payload)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if string(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInjectJSON_PreservesLargeNumbers(t *testing.T) {
	body := `{"_profiler":null,"id":12345678901234567890}`

	got, ok := InjectJSON([]byte(body), map[string]int{"x": 2})
	if !ok {
		t.Fatal("expected injection")
	}
	if !strings.Contains(string(got), `"id":12345678901234567890`) {
		t.Errorf("number precision lost: %s", got)
	}
}

func TestInjectHTML(t *testing.T) {
	body := []byte("<html><body>hi</body></html>")

	got, ok := InjectHTML(body, "<script>x</script>")
	if !ok {
		t.Fatal("expected injection")
	}

	want := "<html><body>hi<script>x</script></body></html>"
	if string(got) != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestInjectHTML_LastBodyTag(t *testing.T) {
	body := []byte("<body><pre></body></pre></body>")

	got, ok := InjectHTML(body, "X")
	if !ok {
		t.Fatal("expected injection")
	}
	if string(got) != "<body><pre></body></pre>X</body>" {
		t.Errorf("unexpected output %s", got)
	}
}

func TestInjectHTML_NoBodyTag(t *testing.T) {
	body := []byte("<div>fragment</div>")

	got, ok := InjectHTML(body, "X")
	if ok {
		t.Error("expected no injection without </body>")
	}
	if string(got) != string(body) {
		t.Errorf("body changed: %s", got)
	}
}

func TestInjector_JSONResponse(t *testing.T) {
	inj := NewInjector(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	out, outcome := inj.Inject(w, req, injectSettings(), []byte(`{"a":1}`), map[string]int{"x": 2})
	if outcome != InjectedJSON {
		t.Fatalf("expected json injection, got %s", outcome)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := doc[ResponseKey]; !ok {
		t.Error("expected profiler key in output")
	}
	if w.Header().Get(settings.DefaultHeaderKey) != "true" {
		t.Error("expected profiler header on JSON response")
	}
}

func TestInjector_HTMLResponse(t *testing.T) {
	inj := NewInjector(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	body := []byte("<html><body>hi</body></html>")
	out, outcome := inj.Inject(w, req, injectSettings(), body, map[string]string{"note": "it's <b>"})
	if outcome != InjectedHTML {
		t.Fatalf("expected html injection, got %s", outcome)
	}

	s := string(out)
	hi := strings.Index(s, "hi")
	script := strings.Index(s, "<script>")
	end := strings.LastIndex(s, "</body>")
	if !(hi < script && script < end) {
		t.Errorf("script not placed between content and </body>: %s", s)
	}
	if !strings.Contains(s, "window.DevProfiler.addInitialPageData(") {
		t.Error("expected toolbar bootstrap call")
	}
	if !strings.Contains(s, "/static/frontend/Magento/luma/en_US/DevTools/js/profiler-widget.js") {
		t.Error("expected widget script url")
	}
	if strings.Contains(s, "<b>") || strings.Contains(s, "it's") {
		t.Error("payload not escaped for script context")
	}
	if w.Header().Get(settings.DefaultHeaderKey) != "" {
		t.Error("profiler header must only be set on JSON responses")
	}
}

func TestInjector_HTMLRequiresToolbar(t *testing.T) {
	inj := NewInjector(nil, nil)
	s := injectSettings()
	s.ToolbarEnabled = false

	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "text/html")
	body := []byte("<body></body>")

	out, outcome := inj.Inject(w, httptest.NewRequest(http.MethodGet, "/", nil), s, body, map[string]int{})
	if outcome != Skipped || string(out) != string(body) {
		t.Errorf("expected untouched body, got %s (%s)", out, outcome)
	}
}

func TestInjector_Eligibility(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		json, html  bool
		want        bool
	}{
		{"json enabled", "application/json", true, false, true},
		{"json api", "application/vnd.api+json", true, false, true},
		{"json disabled", "application/json", false, true, false},
		{"html enabled", "text/html", false, true, true},
		{"html disabled", "text/html", true, false, false},
		{"plain text", "text/plain", true, true, false},
		{"no type", "", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Settings{JSONInjectionEnabled: tt.json, HTMLOutputEnabled: tt.html}
			if got := Eligible(s, tt.contentType); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContentType_FallsBackToAccept(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	if got := ContentType(w, req); got != "application/json" {
		t.Errorf("expected Accept fallback, got %q", got)
	}

	w.Header().Set("Content-Type", "text/html")
	if got := ContentType(w, req); got != "text/html" {
		t.Errorf("expected response content type, got %q", got)
	}
}

func TestInjector_HandshakeCookie(t *testing.T) {
	s := injectSettings()
	s.APIKeyEnabled = true
	s.APIKey = "secret"

	t.Run("set after injection", func(t *testing.T) {
		w := httptest.NewRecorder()
		w.Header().Set("Content-Type", "application/json")
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		NewInjector(nil, nil).Inject(w, req, s, []byte(`{}`), map[string]int{})

		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != APIKeyCookieName || cookies[0].Value != "secret" {
			t.Fatalf("expected handshake cookie, got %v", cookies)
		}
		if cookies[0].HttpOnly {
			t.Error("handshake cookie must be readable from scripts")
		}
		if cookies[0].SameSite != http.SameSiteLaxMode {
			t.Error("expected SameSite=Lax")
		}
	})

	t.Run("not set when present", func(t *testing.T) {
		w := httptest.NewRecorder()
		w.Header().Set("Content-Type", "application/json")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: APIKeyCookieName, Value: "secret"})

		NewInjector(nil, nil).Inject(w, req, s, []byte(`{}`), map[string]int{})

		if len(w.Result().Cookies()) != 0 {
			t.Error("expected no cookie when one already exists")
		}
	})

	t.Run("not set when skipped", func(t *testing.T) {
		w := httptest.NewRecorder()
		w.Header().Set("Content-Type", "application/json")
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		NewInjector(nil, nil).Inject(w, req, s, []byte(`[1]`), map[string]int{})

		if len(w.Result().Cookies()) != 0 {
			t.Error("expected no cookie when nothing was injected")
		}
	})

	t.Run("not set without key", func(t *testing.T) {
		w := httptest.NewRecorder()
		w.Header().Set("Content-Type", "application/json")
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		NewInjector(nil, nil).Inject(w, req, injectSettings(), []byte(`{}`), map[string]int{})

		if len(w.Result().Cookies()) != 0 {
			t.Error("expected no cookie without a configured key")
		}
	})
}

func TestInjector_MixedContentTypeRespectsJSONFlag(t *testing.T) {
	s := injectSettings()
	s.JSONInjectionEnabled = false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json, text/html")
	w := httptest.NewRecorder()
	body := []byte(`{"a":1}`)

	out, outcome := NewInjector(nil, nil).Inject(w, req, s, body, map[string]int{"x": 2})
	if outcome != Skipped || string(out) != string(body) {
		t.Errorf("expected untouched body, got %s (%s)", out, outcome)
	}
	if w.Header().Get(s.HeaderKey) != "" {
		t.Error("debug header must not be set without json injection")
	}
}

func TestInjector_HandshakeCookieRequiresValidation(t *testing.T) {
	s := injectSettings()
	s.APIKeyEnabled = false
	s.APIKey = "secret"

	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "application/json")

	_, outcome := NewInjector(nil, nil).Inject(w, httptest.NewRequest(http.MethodGet, "/", nil), s, []byte(`{}`), map[string]int{})
	if outcome != InjectedJSON {
		t.Fatalf("expected json injection, got %s", outcome)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("key must not be handed out while validation is off")
	}
}
