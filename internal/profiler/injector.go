package profiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/aman-churiwal/devtools-profiler/internal/settings"
	"github.com/tidwall/gjson"
)

// ResponseKey is the top-level key holding the snapshot in JSON responses.
const ResponseKey = "_profiler"

type Outcome int

const (
	Skipped Outcome = iota
	InjectedJSON
	InjectedHTML
)

func (o Outcome) String() string {
	switch o {
	case InjectedJSON:
		return "json"
	case InjectedHTML:
		return "html"
	default:
		return "skipped"
	}
}

// Injector attaches snapshots to outgoing response bodies.
type Injector struct {
	assets  *AssetResolver
	cookies *CookieManager
}

func NewInjector(assets *AssetResolver, cookies *CookieManager) *Injector {
	if assets == nil {
		assets = NewAssetResolver(AssetConfig{})
	}
	if cookies == nil {
		cookies = NewCookieManager()
	}
	return &Injector{assets: assets, cookies: cookies}
}

// ContentType is the response Content-Type, falling back to the request's Accept.
func ContentType(w http.ResponseWriter, r *http.Request) string {
	if ct := w.Header().Get("Content-Type"); ct != "" {
		return ct
	}
	if r != nil {
		return r.Header.Get("Accept")
	}
	return ""
}

func IsJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/vnd.api+json")
}

func IsHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html")
}

// Eligible reports whether settings allow injecting into this content type.
func Eligible(s settings.Settings, contentType string) bool {
	return (IsJSON(contentType) && s.JSONInjectionEnabled) ||
		(IsHTML(contentType) && s.HTMLOutputEnabled)
}

// Inject returns the body with payload attached, or the original body when
// nothing applies. At most one of the JSON and HTML paths runs.
func (i *Injector) Inject(w http.ResponseWriter, r *http.Request, s settings.Settings, body []byte, payload any) ([]byte, Outcome) {
	contentType := ContentType(w, r)
	if !Eligible(s, contentType) {
		return body, Skipped
	}

	out, outcome := body, Skipped
	if IsJSON(contentType) && s.JSONInjectionEnabled {
		if injected, ok := InjectJSON(body, payload); ok {
			w.Header().Set(s.HeaderKey, "true")
			out, outcome = injected, InjectedJSON
		}
	} else if IsHTML(contentType) && s.HTMLOutputEnabled && s.ToolbarEnabled {
		script, err := i.Script(r, payload)
		if err != nil {
			log.Printf("Failed to render profiler script: %v", err)
			return body, Skipped
		}
		if injected, ok := InjectHTML(body, script); ok {
			out, outcome = injected, InjectedHTML
		}
	}

	if outcome != Skipped {
		i.setHandshakeCookie(w, r, s)
	}

	return out, outcome
}

func (i *Injector) setHandshakeCookie(w http.ResponseWriter, r *http.Request, s settings.Settings) {
	// with validation off the key is not needed and must not leak to visitors
	if !s.APIKeyEnabled || !s.HasAPIKey() || i.cookies.Exists(r) {
		return
	}
	if !i.cookies.Set(w, r, s.APIKey) {
		log.Printf("Developer Tools: failed to set profiler cookie")
	}
}

// InjectJSON adds payload under ResponseKey to a JSON object body. Bodies that
// are not a valid JSON object are left alone.
func InjectJSON(body []byte, payload any) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if !gjson.ValidBytes(trimmed) {
		return body, false
	}

	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return body, false
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode profiler data: %v", err)
		return body, false
	}

	if doc.Get(ResponseKey).Exists() {
		return replaceJSONKey(trimmed, encoded)
	}

	end := bytes.LastIndexByte(trimmed, '}')
	var buf bytes.Buffer
	buf.Grow(len(trimmed) + len(encoded) + len(ResponseKey) + 4)
	buf.Write(trimmed[:end])
	if len(bytes.TrimSpace(trimmed[1:end])) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"` + ResponseKey + `":`)
	buf.Write(encoded)
	buf.WriteByte('}')

	return buf.Bytes(), true
}

func replaceJSONKey(body, encoded []byte) ([]byte, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return body, false
	}
	doc[ResponseKey] = json.RawMessage(encoded)

	out, err := json.Marshal(doc)
	if err != nil {
		return body, false
	}
	return out, true
}

// InjectHTML places block immediately before the last literal </body>.
func InjectHTML(body []byte, block string) ([]byte, bool) {
	idx := bytes.LastIndex(body, []byte("</body>"))
	if idx < 0 {
		return body, false
	}

	out := make([]byte, 0, len(body)+len(block))
	out = append(out, body[:idx]...)
	out = append(out, block...)
	out = append(out, body[idx:]...)
	return out, true
}

// Script renders the toolbar bootstrap block for payload.
func (i *Injector) Script(r *http.Request, payload any) (string, error) {
	data, err := scriptSafeJSON(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode profiler data: %w", err)
	}

	scriptURL, err := json.Marshal(i.assets.ScriptURL(r))
	if err != nil {
		return "", fmt.Errorf("failed to encode script url: %w", err)
	}
	styleURL := html.EscapeString(i.assets.StyleURL(r))

	return fmt.Sprintf(profilerScript, styleURL, scriptURL, data, data), nil
}

// scriptSafeJSON encodes payload so it can sit inside a <script> element.
// encoding/json already escapes <, > and &.
func scriptSafeJSON(payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return bytes.ReplaceAll(b, []byte("'"), []byte(`\u0027`)), nil
}

const profilerScript = `
<!-- Developer Tools Profiler -->
<link rel="stylesheet" type="text/css" href="%s">
<script>
    (function() {
        var script = document.createElement('script');
        script.src = %s;
        script.onload = function() {
            if (window.DevProfiler) {
                window.DevProfiler.addInitialPageData(%s);
            } else {
                setTimeout(function() {
                    if (window.DevProfiler) {
                        window.DevProfiler.addInitialPageData(%s);
                    }
                }, 100);
            }
        };
        script.onerror = function() {
            console.error('Failed to load Developer Tools profiler script');
        };
        document.head.appendChild(script);
    })();
</script>
`
