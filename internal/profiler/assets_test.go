package profiler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAssetResolver_URLs(t *testing.T) {
	a := NewAssetResolver(AssetConfig{})

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	if got := a.ScriptURL(req); got != "/static/frontend/Magento/luma/en_US/DevTools/js/profiler-widget.js" {
		t.Errorf("unexpected script url %q", got)
	}
	if got := a.StyleURL(req); got != "/static/frontend/Magento/luma/en_US/DevTools/css/profiler-widget.css" {
		t.Errorf("unexpected style url %q", got)
	}

	admin := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if got := a.ScriptURL(admin); got != "/static/adminhtml/Magento/luma/en_US/DevTools/js/profiler-widget.js" {
		t.Errorf("unexpected admin script url %q", got)
	}
}

func TestAssetResolver_CustomConfig(t *testing.T) {
	a := NewAssetResolver(AssetConfig{BaseURL: "https://cdn.test/assets/", Theme: "Acme/dark"})

	got := a.ScriptURL(httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "https://cdn.test/assets/frontend/Acme/dark/en_US/DevTools/js/profiler-widget.js" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/admin", AdminArea},
		{"/admin/profiler/status", AdminArea},
		{"/administrator", DefaultArea},
		{"/", DefaultArea},
	}

	for _, tt := range tests {
		if got := Area(httptest.NewRequest(http.MethodGet, tt.path, nil)); got != tt.want {
			t.Errorf("Area(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAssetResolver_Locale(t *testing.T) {
	a := NewAssetResolver(AssetConfig{Locales: []string{"de_DE", "fr_FR"}})

	tests := []struct {
		accept string
		want   string
	}{
		{"", "en_US"},
		{"de-DE,de;q=0.9", "de_DE"},
		{"fr-FR", "fr_FR"},
		{"ja-JP", "en_US"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.accept != "" {
			req.Header.Set("Accept-Language", tt.accept)
		}
		if got := a.Locale(req); got != tt.want {
			t.Errorf("Locale(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}
