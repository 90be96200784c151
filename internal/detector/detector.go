package detector

// Label is the canonical classification of a detection run.
type Label string

const (
	LabelWebView              Label = "webview"
	LabelNativeBrowser        Label = "native-browser"
	LabelSafariViewController Label = "safari-view-controller"
	LabelChromeCustomTab      Label = "chrome-custom-tab"
)

// Result is the record threaded through every collector and returned by Detect.
//
// Field ownership (writers in pipeline order):
//
//	IsInWebView             bridge, safari-view-controller, resolver
//	IsInAndroidWebView      quick-check, user-agent, bridge, features, resolver
//	IsInIOSWebView          user-agent, bridge, safari-view-controller, resolver
//	IsInNativeBrowser       user-agent, custom-tabs, resolver
//	IsAndroidCustomTab      custom-tabs, resolver
//	IsSafariViewController  safari-view-controller, resolver
//	IsInIframe              iframe
//	DetectedApp             user-agent, bridge, app-patterns, custom-tabs, safari-view-controller
//	LaunchingApp            custom-tabs
//	DetectionMethods        every collector (append only)
//	Details                 every collector (own key only)
//	Confidence              scorer
//	DetectionResult         resolver
type Result struct {
	IsInWebView            bool                              `json:"isInWebView"`
	IsInAndroidWebView     bool                              `json:"isInAndroidWebView"`
	IsInIOSWebView         bool                              `json:"isInIOSWebView"`
	IsInNativeBrowser      bool                              `json:"isInNativeBrowser"`
	IsAndroidCustomTab     bool                              `json:"isAndroidCustomTab"`
	IsSafariViewController bool                              `json:"isSafariViewController"`
	IsInIframe             bool                              `json:"isInIframe"`
	DetectedApp            string                            `json:"detectedApp,omitempty"`
	LaunchingApp           string                            `json:"launchingApp,omitempty"`
	DetectionResult        Label                             `json:"detectionResult"`
	DetectionMethods       []string                          `json:"detectionMethods"`
	Details                map[string]map[string]interface{} `json:"details"`
	Confidence             int                               `json:"confidence"`
	UserAgent              string                            `json:"userAgent"`
}

func newResult(env Environment) *Result {
	return &Result{
		DetectionMethods: []string{},
		Details:          map[string]map[string]interface{}{},
		UserAgent:        env.UserAgent,
	}
}

// addMethod appends a fired heuristic to the evidence log.
func (r *Result) addMethod(method string) {
	r.DetectionMethods = append(r.DetectionMethods, method)
}

// HasMethod reports whether the given heuristic fired.
func (r *Result) HasMethod(method string) bool {
	for _, m := range r.DetectionMethods {
		if m == method {
			return true
		}
	}
	return false
}

// detail returns the details sub-record owned by a collector, creating it on first use.
func (r *Result) detail(collector string) map[string]interface{} {
	d, ok := r.Details[collector]
	if !ok {
		d = map[string]interface{}{}
		r.Details[collector] = d
	}
	return d
}

// webViewFlagged reports whether any WebView flag is currently raised.
func (r *Result) webViewFlagged() bool {
	return r.IsInWebView || r.IsInAndroidWebView || r.IsInIOSWebView
}

// Platform returns "android", "ios" or "other" based on the resolved flags and user agent.
func (r Result) Platform() string {
	switch {
	case r.IsInAndroidWebView || r.IsAndroidCustomTab || androidRegex.MatchString(r.UserAgent):
		return "android"
	case r.IsInIOSWebView || r.IsSafariViewController || iosDeviceRegex.MatchString(r.UserAgent):
		return "ios"
	default:
		return "other"
	}
}

// Collector inspects one category of environment evidence and records it on the result.
type Collector interface {
	Name() string
	Collect(env Environment, r *Result)
}
