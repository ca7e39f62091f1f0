package profiler

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const (
	DefaultArea   = "frontend"
	AdminArea     = "adminhtml"
	DefaultTheme  = "Magento/luma"
	DefaultLocale = "en_US"

	assetModule = "DevTools"
)

// AssetResolver builds the toolbar widget asset URLs for a request.
type AssetResolver struct {
	baseURL string
	theme   string
	matcher language.Matcher
	locales []language.Tag
}

type AssetConfig struct {
	BaseURL string   // defaults to "/static"
	Theme   string   // defaults to DefaultTheme
	Locales []string // supported locales, e.g. "en_US", "de_DE"
}

func NewAssetResolver(cfg AssetConfig) *AssetResolver {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "/static"
	}
	theme := cfg.Theme
	if theme == "" {
		theme = DefaultTheme
	}

	tags := []language.Tag{}
	for _, l := range append([]string{DefaultLocale}, cfg.Locales...) {
		tag, err := language.Parse(strings.ReplaceAll(l, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	return &AssetResolver{
		baseURL: baseURL,
		theme:   theme,
		matcher: language.NewMatcher(tags),
		locales: tags,
	}
}

func (a *AssetResolver) ScriptURL(r *http.Request) string {
	return a.url(r, "js/profiler-widget.js")
}

func (a *AssetResolver) StyleURL(r *http.Request) string {
	return a.url(r, "css/profiler-widget.css")
}

func (a *AssetResolver) url(r *http.Request, file string) string {
	return strings.Join([]string{a.baseURL, Area(r), a.theme, a.Locale(r), assetModule, file}, "/")
}

// Area is the admin area for /admin paths and the storefront otherwise.
func Area(r *http.Request) string {
	if r == nil || r.URL == nil {
		return DefaultArea
	}
	if r.URL.Path == "/admin" || strings.HasPrefix(r.URL.Path, "/admin/") {
		return AdminArea
	}
	return DefaultArea
}

// Locale matches Accept-Language against the supported locales and renders
// the result as ll_RR.
func (a *AssetResolver) Locale(r *http.Request) string {
	if r == nil {
		return DefaultLocale
	}

	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return DefaultLocale
	}

	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return DefaultLocale
	}

	_, idx, conf := a.matcher.Match(desired...)
	if conf == language.No || idx < 0 || idx >= len(a.locales) {
		return DefaultLocale
	}

	base, _ := a.locales[idx].Base()
	region, conf := a.locales[idx].Region()
	if conf == language.No {
		return DefaultLocale
	}

	return base.String() + "_" + region.String()
}
