package detector

// webViewConfidenceThreshold is the fallback confidence above which the page counts as a WebView.
const webViewConfidenceThreshold = 70

// resolve applies the precedence ladder; the first matching branch wins and
// overrides whatever the collectors left behind.
func resolve(r *Result) {
	// A SFSafariViewController positive raises the iOS flag itself, so only
	// count that flag as WebView evidence when the container was not detected.
	genuineWebView := r.IsInAndroidWebView || (r.IsInIOSWebView && !r.IsSafariViewController)

	switch {
	case genuineWebView:
		r.IsInWebView = true
		r.IsAndroidCustomTab = false
		r.IsSafariViewController = false
		r.IsInNativeBrowser = false
	case r.IsAndroidCustomTab:
		r.IsInWebView = false
		r.IsInAndroidWebView = false
		r.IsInIOSWebView = false
		r.IsInNativeBrowser = false
	case r.IsSafariViewController:
		r.IsInWebView = true
		r.IsInIOSWebView = true
		r.IsAndroidCustomTab = false
		r.IsInNativeBrowser = false
	case r.HasMethod(MethodNativeBrowser):
		r.IsInNativeBrowser = true
		r.IsInWebView = false
		r.IsInAndroidWebView = false
		r.IsInIOSWebView = false
		r.IsAndroidCustomTab = false
		r.IsSafariViewController = false
	default:
		r.IsInWebView = r.Confidence > webViewConfidenceThreshold
		r.IsInNativeBrowser = !r.IsInWebView
	}

	r.DetectionResult = label(r)
}

func label(r *Result) Label {
	switch {
	case r.IsAndroidCustomTab:
		return LabelChromeCustomTab
	case r.IsSafariViewController:
		return LabelSafariViewController
	case r.IsInWebView:
		return LabelWebView
	default:
		return LabelNativeBrowser
	}
}
