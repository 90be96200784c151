// Package headers propagates a detection result to backends as request headers.
package headers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/webview-detector/internal/detector"
)

// Header names carried on outgoing requests.
const (
	HeaderWebView        = "X-App-WebView"
	HeaderCustomTab      = "X-Android-CustomTab"
	HeaderViewController = "X-Safari-ViewController"
	HeaderIframe         = "X-In-Iframe"
	HeaderAppName        = "X-App-Name"
	HeaderAppPlatform    = "X-App-Platform"
)

// Values returns the classification headers for a result. X-App-Name is
// omitted when no app was identified.
func Values(result detector.Result) http.Header {
	h := http.Header{}
	h.Set(HeaderWebView, strconv.FormatBool(result.IsInWebView))
	h.Set(HeaderCustomTab, strconv.FormatBool(result.IsAndroidCustomTab))
	h.Set(HeaderViewController, strconv.FormatBool(result.IsSafariViewController))
	h.Set(HeaderIframe, strconv.FormatBool(result.IsInIframe))
	if result.DetectedApp != "" {
		h.Set(HeaderAppName, result.DetectedApp)
	}
	h.Set(HeaderAppPlatform, result.Platform())
	return h
}

// Transport adds the classification headers to every request it sends.
type Transport struct {
	Base   http.RoundTripper
	values http.Header
}

// NewTransport wraps base, falling back to http.DefaultTransport when nil.
func NewTransport(base http.RoundTripper, result detector.Result) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, values: Values(result)}
}

// RoundTrip clones the request before adding headers; the caller's request is left untouched.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header == nil {
		out.Header = http.Header{}
	}
	for key, vals := range t.values {
		out.Header[key] = append([]string(nil), vals...)
	}
	return t.Base.RoundTrip(out)
}

// Classification is the server-side view of the headers.
type Classification struct {
	WebView        bool   `json:"webView"`
	CustomTab      bool   `json:"customTab"`
	ViewController bool   `json:"safariViewController"`
	Iframe         bool   `json:"iframe"`
	AppName        string `json:"appName,omitempty"`
	Platform       string `json:"platform"`
	Present        bool   `json:"present"`
}

// Label mirrors the detection label precedence.
func (c Classification) Label() detector.Label {
	switch {
	case c.CustomTab:
		return detector.LabelChromeCustomTab
	case c.ViewController:
		return detector.LabelSafariViewController
	case c.WebView:
		return detector.LabelWebView
	default:
		return detector.LabelNativeBrowser
	}
}

// Parse reads the classification headers. Unparseable booleans count as false
// and an unknown platform becomes "other".
func Parse(h http.Header) Classification {
	c := Classification{Platform: "other"}
	for _, key := range []string{HeaderWebView, HeaderCustomTab, HeaderViewController, HeaderIframe, HeaderAppName, HeaderAppPlatform} {
		if h.Get(key) != "" {
			c.Present = true
			break
		}
	}

	c.WebView = parseBool(h.Get(HeaderWebView))
	c.CustomTab = parseBool(h.Get(HeaderCustomTab))
	c.ViewController = parseBool(h.Get(HeaderViewController))
	c.Iframe = parseBool(h.Get(HeaderIframe))
	c.AppName = strings.TrimSpace(h.Get(HeaderAppName))

	switch p := strings.ToLower(strings.TrimSpace(h.Get(HeaderAppPlatform))); p {
	case "android", "ios":
		c.Platform = p
	}
	return c
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

type contextKey struct{}

// Middleware parses the classification headers into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKey{}, Parse(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the classification stored by Middleware.
func FromContext(ctx context.Context) (Classification, bool) {
	c, ok := ctx.Value(contextKey{}).(Classification)
	return c, ok
}
