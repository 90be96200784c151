package detector

import "regexp"

// Detection method tags.
const (
	MethodDirectAndroidWV        = "direct_android_wv"
	MethodUserAgentAndroidWV     = "user_agent_android_wv"
	MethodUserAgentAndroid       = "user_agent_android"
	MethodUserAgentIOS           = "user_agent_ios"
	MethodNativeBrowser          = "native_browser"
	MethodAndroidBridge          = "android_bridge"
	MethodIOSBridge              = "ios_webkit_bridge"
	MethodReactNativeBridge      = "react_native_bridge"
	MethodFlutterBridge          = "flutter_bridge"
	MethodLocalStorageRestricted = "localstorage_restricted"
	MethodLimitedFeatures        = "limited_browser_features"
	MethodChromeCustomTab        = "chrome_custom_tab"
	MethodSafariViewController   = "safari_view_controller"
)

var (
	androidRegex       = regexp.MustCompile(`(?i)Android`)
	iosDeviceRegex     = regexp.MustCompile(`(?i)iPhone|iPad|iPod`)
	wvTokenRegex       = regexp.MustCompile(`\bwv\b`)
	spaceWvRegex       = regexp.MustCompile(` wv`)
	chromeVersionRegex = regexp.MustCompile(`Chrome/[\d.]+`)
	versionTokenRegex  = regexp.MustCompile(`Version/[\d.]+`)
	appleWebKitRegex   = regexp.MustCompile(`AppleWebKit`)
	safariTokenRegex   = regexp.MustCompile(`Safari`)
	iosBrowserAppRegex = regexp.MustCompile(`CriOS|FxiOS|OPiOS`)
	mobileTokenRegex   = regexp.MustCompile(`Mobile`)
	tabletTokenRegex   = regexp.MustCompile(`(?i)Tablet`)
)

// browserFamily matches one native browser. Each family excludes the tokens
// that other families own so that at most one family can match a user agent.
type browserFamily struct {
	name    string
	match   *regexp.Regexp
	exclude *regexp.Regexp
}

func (b browserFamily) matches(ua string) bool {
	if !b.match.MatchString(ua) {
		return false
	}
	return b.exclude == nil || !b.exclude.MatchString(ua)
}

// Checked in priority order; the first match names the browser.
var browserFamilies = []browserFamily{
	{
		name:    "Chrome Browser",
		match:   regexp.MustCompile(`(?:Chrome|CriOS)/[\d.]+`),
		exclude: regexp.MustCompile(`Edg(?:e|A|iOS)?/|SamsungBrowser|OPR/|OPiOS|DuckDuckGo|Ddg/|UCBrowser`),
	},
	{
		name:    "Firefox Browser",
		match:   regexp.MustCompile(`(?:Firefox|FxiOS)/[\d.]+`),
		exclude: regexp.MustCompile(`Edg(?:e|A|iOS)?/|SamsungBrowser|OPR/|OPiOS`),
	},
	{
		name:    "Safari Browser",
		match:   regexp.MustCompile(`Version/[\d.]+.*Safari/`),
		exclude: regexp.MustCompile(`Chrome|CriOS|FxiOS|OPiOS|EdgiOS|DuckDuckGo|Ddg/|UCBrowser`),
	},
	{
		name:  "Edge Browser",
		match: regexp.MustCompile(`Edg(?:e|A|iOS)?/[\d.]+`),
	},
	{
		name:  "Samsung Internet",
		match: regexp.MustCompile(`SamsungBrowser/[\d.]+`),
	},
	{
		name:  "Opera Browser",
		match: regexp.MustCompile(`OPR/[\d.]+|OPiOS/[\d.]+|Opera`),
	},
	{
		name:  "DuckDuckGo Browser",
		match: regexp.MustCompile(`DuckDuckGo/[\d.]+|Ddg/[\d.]+`),
	},
}

func matchBrowserFamily(ua string) string {
	for _, family := range browserFamilies {
		if family.matches(ua) {
			return family.name
		}
	}
	return ""
}

// userAgentCollector classifies platform and WebView vs native browser from the UA string.
type userAgentCollector struct{}

func (userAgentCollector) Name() string { return "user-agent" }

func (c userAgentCollector) Collect(env Environment, r *Result) {
	ua := env.UserAgent

	isAndroid := androidRegex.MatchString(ua)
	isIOS := iosDeviceRegex.MatchString(ua)

	hasWvToken := wvTokenRegex.MatchString(ua)
	hasChrome := chromeVersionRegex.MatchString(ua)
	hasVersion := versionTokenRegex.MatchString(ua)
	legacyAndroid := !hasChrome && hasVersion
	chromeWv := hasChrome && spaceWvRegex.MatchString(ua)
	androidWebView := isAndroid && (hasWvToken || legacyAndroid || chromeWv)

	hasWebKit := appleWebKitRegex.MatchString(ua)
	hasSafari := safariTokenRegex.MatchString(ua)
	hasBrowserApp := iosBrowserAppRegex.MatchString(ua)
	uiWebView := hasWebKit && !hasSafari
	noBrowserToken := !hasBrowserApp && !hasSafari
	bridgeWebKit := env.Bridges.WebKitMessageHandlers && hasWebKit
	iosWebView := isIOS && (uiWebView || noBrowserToken || bridgeWebKit)

	switch {
	case androidWebView:
		r.IsInAndroidWebView = true
		if hasWvToken || chromeWv {
			r.addMethod(MethodUserAgentAndroidWV)
		} else {
			r.addMethod(MethodUserAgentAndroid)
		}
	case iosWebView:
		r.IsInIOSWebView = true
		r.addMethod(MethodUserAgentIOS)
	}

	browser := ""
	if (isAndroid || isIOS) && !androidWebView && !iosWebView {
		browser = matchBrowserFamily(ua)
		if browser != "" {
			r.IsInNativeBrowser = true
			r.DetectedApp = browser
			r.addMethod(MethodNativeBrowser)
		}
	}

	d := r.detail(c.Name())
	d["isAndroid"] = isAndroid
	d["isIOS"] = isIOS
	d["hasWvToken"] = hasWvToken
	d["hasChromeVersion"] = hasChrome
	d["hasVersionToken"] = hasVersion
	d["legacyAndroidPattern"] = legacyAndroid
	d["chromeWvPattern"] = chromeWv
	d["hasAppleWebKit"] = hasWebKit
	d["hasSafariToken"] = hasSafari
	d["hasBrowserAppToken"] = hasBrowserApp
	d["uiWebViewPattern"] = uiWebView
	d["bridgeWebKitPattern"] = bridgeWebKit
	d["isAndroidWebView"] = androidWebView
	d["isIOSWebView"] = iosWebView
	d["browserFamily"] = browser
}
