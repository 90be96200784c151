package detector

// bridgeCollector looks for objects a native host injects into the page.
// Any of them is conclusive: an unmodified browser never exposes them.
type bridgeCollector struct{}

func (bridgeCollector) Name() string { return "bridge" }

func (c bridgeCollector) Collect(env Environment, r *Result) {
	b := env.Bridges
	d := r.detail(c.Name())
	d["androidInterface"] = b.AndroidInterface
	d["webkitMessageHandlers"] = b.WebKitMessageHandlers
	d["reactNativeWebView"] = b.ReactNativeWebView
	d["flutterInAppWebView"] = b.FlutterInAppWebView

	if b.AndroidInterface {
		r.IsInAndroidWebView = true
		r.IsInWebView = true
		r.addMethod(MethodAndroidBridge)
	}

	if b.WebKitMessageHandlers {
		r.IsInIOSWebView = true
		r.IsInWebView = true
		r.addMethod(MethodIOSBridge)
	}

	if b.ReactNativeWebView {
		c.flagFramework(env, r)
		r.DetectedApp = "React Native App"
		r.addMethod(MethodReactNativeBridge)
	}

	if b.FlutterInAppWebView {
		c.flagFramework(env, r)
		r.DetectedApp = "Flutter App"
		r.addMethod(MethodFlutterBridge)
	}
}

// flagFramework marks the platform WebView for cross-platform framework bridges.
// iOS is only assumed when the user agent says so.
func (bridgeCollector) flagFramework(env Environment, r *Result) {
	r.IsInWebView = true
	if iosDeviceRegex.MatchString(env.UserAgent) {
		r.IsInIOSWebView = true
		return
	}
	r.IsInAndroidWebView = true
}
