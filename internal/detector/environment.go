package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment is a read-only snapshot of the browser signals a page can observe.
// The zero value describes a plain top-level page that reported no capabilities.
type Environment struct {
	UserAgent  string            `json:"userAgent" yaml:"userAgent"`
	Bridges    Bridges           `json:"bridges" yaml:"bridges"`
	Features   Features          `json:"features" yaml:"features"`
	Navigation Navigation        `json:"navigation" yaml:"navigation"`
	Display    Display           `json:"display" yaml:"display"`
	Geometry   Geometry          `json:"geometry" yaml:"geometry"`
	Safari     SafariAPIs        `json:"safari" yaml:"safari"`
	Frame      Frame             `json:"frame" yaml:"frame"`
	Meta       map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Bridges records which host-injected globals were reachable from the page.
type Bridges struct {
	AndroidInterface      bool `json:"androidInterface" yaml:"androidInterface"`
	WebKitMessageHandlers bool `json:"webkitMessageHandlers" yaml:"webkitMessageHandlers"`
	ReactNativeWebView    bool `json:"reactNativeWebView" yaml:"reactNativeWebView"`
	FlutterInAppWebView   bool `json:"flutterInAppWebView" yaml:"flutterInAppWebView"`
}

// StorageProbe is the outcome of a localStorage write/delete round trip.
// Error carries the exception message when the page caught one.
type StorageProbe struct {
	WriteFailed bool   `json:"writeFailed" yaml:"writeFailed"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the write/delete probe did not succeed.
func (s StorageProbe) Failed() bool {
	return s.WriteFailed || s.Error != ""
}

// Features is the feature-detection checklist.
type Features struct {
	LocalStorage   StorageProbe `json:"localStorage" yaml:"localStorage"`
	ServiceWorker  bool         `json:"serviceWorker" yaml:"serviceWorker"`
	CookiesEnabled bool         `json:"cookiesEnabled" yaml:"cookiesEnabled"`
	DeviceMemory   bool         `json:"deviceMemory" yaml:"deviceMemory"`
	Battery        bool         `json:"battery" yaml:"battery"`
	Share          bool         `json:"share" yaml:"share"`
	Notification   bool         `json:"notification" yaml:"notification"`
	Geolocation    bool         `json:"geolocation" yaml:"geolocation"`
	HasOpener      bool         `json:"hasOpener" yaml:"hasOpener"`
}

// Navigation types as reported by the Navigation Timing API.
const (
	NavigationNavigate    = "navigate"
	NavigationReload      = "reload"
	NavigationBackForward = "back_forward"
	NavigationPrerender   = "prerender"
)

// Navigation carries document location, history and timing metadata.
type Navigation struct {
	URL                string  `json:"url" yaml:"url"`
	Referrer           string  `json:"referrer" yaml:"referrer"`
	HistoryLength      int     `json:"historyLength" yaml:"historyLength"`
	NavigationType     string  `json:"navigationType" yaml:"navigationType"`
	DOMContentLoadedMs float64 `json:"domContentLoadedMs" yaml:"domContentLoadedMs"`
}

// Display holds the display-mode media query results.
type Display struct {
	Standalone bool `json:"standalone" yaml:"standalone"`
	Fullscreen bool `json:"fullscreen" yaml:"fullscreen"`
}

// Geometry is the window and screen size in CSS pixels.
type Geometry struct {
	InnerWidth       int     `json:"innerWidth" yaml:"innerWidth"`
	InnerHeight      int     `json:"innerHeight" yaml:"innerHeight"`
	ScreenWidth      int     `json:"screenWidth" yaml:"screenWidth"`
	ScreenHeight     int     `json:"screenHeight" yaml:"screenHeight"`
	DevicePixelRatio float64 `json:"devicePixelRatio" yaml:"devicePixelRatio"`
}

// HeightRatio returns innerHeight/screenHeight, or 0 when the screen size is unknown.
func (g Geometry) HeightRatio() float64 {
	if g.ScreenHeight <= 0 {
		return 0
	}
	return float64(g.InnerHeight) / float64(g.ScreenHeight)
}

// WidthRatio returns innerWidth/screenWidth, or 0 when the screen size is unknown.
func (g Geometry) WidthRatio() float64 {
	if g.ScreenWidth <= 0 {
		return 0
	}
	return float64(g.InnerWidth) / float64(g.ScreenWidth)
}

// SafariAPIs lists Safari-specific globals.
type SafariAPIs struct {
	ExtensionAPI               bool `json:"extensionAPI" yaml:"extensionAPI"`
	PushNotification           bool `json:"pushNotification" yaml:"pushNotification"`
	ApplePay                   bool `json:"applePay" yaml:"applePay"`
	ConvertPointFromPageToNode bool `json:"convertPointFromPageToNode" yaml:"convertPointFromPageToNode"`
}

// Frame captures the window identity comparisons used for iframe detection.
// TopAccessDenied is set when comparing self to top raised a security error.
type Frame struct {
	TopDiffers      bool `json:"topDiffers" yaml:"topDiffers"`
	TopAccessDenied bool `json:"topAccessDenied" yaml:"topAccessDenied"`
	ParentDiffers   bool `json:"parentDiffers" yaml:"parentDiffers"`
}

// Snapshot pairs an environment with the place it was loaded from.
type Snapshot struct {
	Source      string
	Environment Environment
}

// LoadSnapshot reads an environment snapshot from a JSON or YAML file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Snapshot{}, err
	}

	var env Environment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &env)
	case ".json", "":
		err = json.Unmarshal(data, &env)
	default:
		return Snapshot{}, fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	return Snapshot{Source: path, Environment: env}, nil
}

// LoadSnapshots reads every path, stopping at the first failure.
func LoadSnapshots(paths []string) ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, len(paths))
	for _, path := range paths {
		snap, err := LoadSnapshot(path)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}
