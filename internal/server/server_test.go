package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aman-churiwal/devtools-profiler/internal/config"
	"github.com/aman-churiwal/devtools-profiler/internal/profiler"
	"github.com/aman-churiwal/devtools-profiler/internal/repository"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewDatabase(storage.DriverSQLite, ":memory:", logger.Silent, profiler.NewSQLProfiler())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx := context.Background()
	if _, err := service.NewCatalogService(repository.NewProductRepository(db)).Seed(ctx); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	auth := service.NewAuthService(repository.NewAuthRepository(db), testSecret, 1)
	if _, err := auth.Register(ctx, "admin@example.com", "s3cret", "Admin"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "developer", Environment: "test"},
		Database: config.DatabaseConfig{Driver: storage.DriverSQLite, DSN: ":memory:"},
		Auth:     config.AuthConfig{JWTSecret: testSecret, ExpiryHours: 1},
		Profiler: config.ProfilerConfig{
			AssetBaseURL: "/static",
			Theme:        "Magento/luma",
			MaxBodyBytes: 4096,
		},
	}

	return New(cfg, db, nil)
}

func do(s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server) map[string]string {
	t.Helper()

	w := do(s, http.MethodPost, "/admin/auth/login", `{"email":"admin@example.com","password":"s3cret"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	token := gjson.Get(w.Body.String(), "token").String()
	return map[string]string{"Authorization": "Bearer " + token}
}

func enableWithKey(t *testing.T, s *Server) string {
	t.Helper()
	auth := login(t, s)

	if w := do(s, http.MethodPost, "/admin/profiler/enable", "", auth); w.Code != http.StatusOK {
		t.Fatalf("enable failed: %d %s", w.Code, w.Body.String())
	}

	w := do(s, http.MethodPost, "/admin/profiler/api-key", "", auth)
	if w.Code != http.StatusOK {
		t.Fatalf("key generation failed: %d %s", w.Code, w.Body.String())
	}

	key := gjson.Get(w.Body.String(), "api_key").String()
	if len(key) != 32 {
		t.Fatalf("unexpected key %q", key)
	}
	return key
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	if w := do(s, http.MethodGet, "/admin/profiler/status", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	bad := map[string]string{"Authorization": "Bearer nope"}
	if w := do(s, http.MethodPost, "/admin/profiler/enable", "", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", w.Code)
	}

	w := do(s, http.MethodPost, "/admin/auth/login", `{"email":"admin@example.com","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", w.Code)
	}
}

func TestProfilerDisabledByDefault(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/api/products", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if gjson.Get(w.Body.String(), "_profiler").Exists() {
		t.Error("expected no profiler data while disabled")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestJSONInjection(t *testing.T) {
	s := newTestServer(t)
	key := enableWithKey(t, s)

	w := do(s, http.MethodGet, "/api/products?page=1", "", map[string]string{profiler.APIKeyHeader: key})
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	body := w.Body.String()
	if !gjson.Valid(body) {
		t.Fatalf("invalid JSON: %s", body)
	}
	if gjson.Get(body, "total").Int() != 4 {
		t.Errorf("original payload changed: %s", body)
	}

	prof := gjson.Get(body, "_profiler")
	if !prof.Exists() {
		t.Fatal("expected profiler data")
	}
	if n := prof.Get("database.total_queries").Int(); n != 2 {
		t.Errorf("expected 2 profiled queries, got %d", n)
	}
	if prof.Get("database.queries_by_type.SELECT").Int() != 2 {
		t.Errorf("unexpected query types %s", prof.Get("database.queries_by_type").Raw)
	}
	if prof.Get("request.method").String() != http.MethodGet {
		t.Error("expected request section")
	}
	if prof.Get("metadata.request_id").String() != w.Header().Get("X-Request-ID") {
		t.Error("expected snapshot to carry the request id")
	}
	if !prof.Get("timers.handler").Exists() {
		t.Error("expected handler timer")
	}

	if w.Header().Get("X-Debug-Mode") != "true" {
		t.Error("expected profiler header")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == profiler.APIKeyCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != key {
		t.Error("expected handshake cookie")
	}
}

func TestRejectedKeyServesPlainResponse(t *testing.T) {
	s := newTestServer(t)
	enableWithKey(t, s)

	for _, headers := range []map[string]string{
		nil,
		{profiler.APIKeyHeader: "wrong"},
	} {
		w := do(s, http.MethodGet, "/api/products", "", headers)
		if gjson.Get(w.Body.String(), "_profiler").Exists() {
			t.Errorf("expected plain response for headers %v", headers)
		}
		if len(w.Result().Cookies()) != 0 {
			t.Error("expected no cookie for rejected request")
		}
	}
}

func TestCookieAuthenticatesFollowUpRequests(t *testing.T) {
	s := newTestServer(t)
	key := enableWithKey(t, s)

	w := do(s, http.MethodGet, "/api/products/LAMP-001", "", map[string]string{
		"Cookie": profiler.APIKeyCookieName + "=" + key,
	})

	if !gjson.Get(w.Body.String(), "_profiler").Exists() {
		t.Error("expected cookie to authorize profiling")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("expected no new cookie when one is present")
	}
}

func TestHTMLInjection(t *testing.T) {
	s := newTestServer(t)
	key := enableWithKey(t, s)

	w := do(s, http.MethodGet, "/?api_key="+key, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	body := w.Body.String()
	script := strings.Index(body, "window.DevProfiler.addInitialPageData(")
	end := strings.LastIndex(body, "</body>")
	if script < 0 || script > end {
		t.Fatalf("expected toolbar script before </body>: %s", body)
	}
	if !strings.Contains(body, "/static/frontend/Magento/luma/en_US/DevTools/js/profiler-widget.js") {
		t.Error("expected widget asset url")
	}
	if !strings.Contains(body, "Desk Lamp") {
		t.Error("original page content lost")
	}
	if w.Header().Get("Content-Length") != "" && w.Header().Get("Content-Length") != strconv.Itoa(len(body)) {
		t.Errorf("stale content length %s for %d bytes", w.Header().Get("Content-Length"), len(body))
	}
}

func TestDisableStopsInjection(t *testing.T) {
	s := newTestServer(t)
	key := enableWithKey(t, s)
	auth := login(t, s)

	if w := do(s, http.MethodPost, "/admin/profiler/disable", "", auth); w.Code != http.StatusOK {
		t.Fatalf("disable failed: %d", w.Code)
	}

	w := do(s, http.MethodGet, "/api/products", "", map[string]string{profiler.APIKeyHeader: key})
	if gjson.Get(w.Body.String(), "_profiler").Exists() {
		t.Error("expected no profiler data after disable")
	}

	status := do(s, http.MethodGet, "/admin/profiler/status", "", auth)
	if gjson.Get(status.Body.String(), "status.settings.enabled").Bool() {
		t.Error("expected status to report disabled")
	}
}

func TestAPIKeyWithoutRegenerate(t *testing.T) {
	s := newTestServer(t)
	enableWithKey(t, s)

	w := do(s, http.MethodPost, "/admin/profiler/api-key?regenerate=false", "", login(t, s))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !gjson.Get(w.Body.String(), "checks.database").Bool() {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}
