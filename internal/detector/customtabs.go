package detector

import (
	"net/url"
	"regexp"
	"strings"
)

// Custom Tab scoring weights.
const (
	customTabThreshold        = 45
	customTabConclusive       = 100
	customTabNoOpener         = 10
	customTabMinimalHistory   = 10
	customTabDirectOpen       = 15
	customTabNonStandardPort  = 10
	customTabFastNavigation   = 10
	customTabSignatureBonus   = 50
	customTabStandalone       = 15
	customTabSpecialHash      = 15
	customTabNonMobilePenalty = -30

	fastNavigationMs = 1000
	androidAppScheme = "android-app://"
)

var customTabHashRegex = regexp.MustCompile(`#(?:oauth|token|auth|app|custom)`)

// customTabCollector scores whether an Android Chrome page runs in a Custom Tab.
type customTabCollector struct{}

func (customTabCollector) Name() string { return "custom-tabs" }

func (c customTabCollector) Collect(env Environment, r *Result) {
	d := r.detail(c.Name())
	ua := env.UserAgent

	applicable := androidRegex.MatchString(ua) && chromeVersionRegex.MatchString(ua) && !wvTokenRegex.MatchString(ua)
	d["applicable"] = applicable
	if !applicable {
		d["isCustomTab"] = false
		return
	}

	nav := env.Navigation
	score := 0

	launchingApp := launchingPackage(nav.Referrer)
	singleEntry := nav.HistoryLength == 1
	conclusive := launchingApp != "" || singleEntry
	if conclusive {
		score += customTabConclusive
	}

	noOpener := !env.Features.HasOpener
	minimalHistory := nav.HistoryLength > 0 && nav.HistoryLength <= 2
	directOpen := nav.Referrer == "" && singleEntry
	port := pagePort(nav.URL)
	nonStandardPort := port != "" && port != "80" && port != "443"
	fastNavigation := nav.DOMContentLoadedMs > 0 && nav.DOMContentLoadedMs < fastNavigationMs
	signature := noOpener && minimalHistory && directOpen && nonStandardPort && fastNavigation

	if signature {
		score += customTabSignatureBonus
	} else {
		score += weightIf(noOpener, customTabNoOpener)
		score += weightIf(minimalHistory, customTabMinimalHistory)
		score += weightIf(directOpen, customTabDirectOpen)
		score += weightIf(nonStandardPort, customTabNonStandardPort)
		score += weightIf(fastNavigation, customTabFastNavigation)
	}

	standalone := env.Display.Standalone
	specialHash := customTabHashRegex.MatchString(pageFragment(nav.URL))
	nonMobile := !mobileTokenRegex.MatchString(ua) || tabletTokenRegex.MatchString(ua)
	score += weightIf(standalone, customTabStandalone)
	score += weightIf(specialHash, customTabSpecialHash)
	score += weightIf(nonMobile, customTabNonMobilePenalty)

	isCustomTab := score >= customTabThreshold

	d["launchingApp"] = launchingApp
	d["singleHistoryEntry"] = singleEntry
	d["conclusive"] = conclusive
	d["noOpener"] = noOpener
	d["minimalHistory"] = minimalHistory
	d["likelyDirectOpen"] = directOpen
	d["nonStandardPort"] = nonStandardPort
	d["fastNavigation"] = fastNavigation
	d["signaturePattern"] = signature
	d["standalone"] = standalone
	d["specialHash"] = specialHash
	d["nonMobile"] = nonMobile
	d["score"] = score
	d["threshold"] = customTabThreshold
	d["isCustomTab"] = isCustomTab

	if !isCustomTab {
		return
	}

	r.addMethod(MethodChromeCustomTab)
	if r.webViewFlagged() {
		d["suppressedByWebView"] = true
		return
	}

	r.IsAndroidCustomTab = true
	r.IsInNativeBrowser = false
	r.IsInWebView = false
	r.LaunchingApp = launchingApp
	r.DetectedApp = "Chrome Custom Tab"
	if launchingApp != "" {
		r.DetectedApp = "Chrome Custom Tab (" + launchingApp + ")"
	}
}

// launchingPackage extracts the package name from an android-app:// referrer.
func launchingPackage(referrer string) string {
	if !strings.HasPrefix(referrer, androidAppScheme) {
		return ""
	}
	pkg := strings.TrimPrefix(referrer, androidAppScheme)
	if i := strings.IndexAny(pkg, "/?#"); i >= 0 {
		pkg = pkg[:i]
	}
	return pkg
}

func pagePort(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Port()
}

func pageFragment(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[i:]
	}
	return ""
}

func weightIf(cond bool, weight int) int {
	if cond {
		return weight
	}
	return 0
}
