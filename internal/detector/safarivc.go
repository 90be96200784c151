package detector

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SFSafariViewController scoring weights. Since iOS 14 the container exposes
// most Safari-only APIs, so modern versions use a lower threshold and lighter
// penalties for those APIs.
const (
	safariVCThresholdLegacy = 50
	safariVCThresholdModern = 40
	safariVCModernMajor     = 14

	safariVCNoBridge           = 10
	safariVCNoOpener           = 5
	safariVCSingleEntryDirect  = 25
	safariVCSingleEntry        = 15
	safariVCLongHistory        = -20
	safariVCEmptyReferrer      = 5
	safariVCBrowserDisplay     = 5
	safariVCHeightRatio        = 20
	safariVCHeightRatioMild    = 5
	safariVCExtensionLegacy    = -15
	safariVCExtensionModern    = -5
	safariVCPushLegacy         = -10
	safariVCPushModern         = -5
	safariVCApplePay           = -2
	safariVCConvertPoint       = -2
	safariVCSignatureLegacy    = 25
	safariVCSignatureModern    = 30
	safariVCModernCompensation = 10
	safariVCContainerName      = "SFSafariViewController"
	safariBrowserAttribution   = "Safari Browser"
)

var iosVersionRegex = regexp.MustCompile(`OS (\d+)(?:[_.](\d+))?(?:[_.](\d+))?`)

// iosVersion reads the iOS version from the UA; ok is false when absent.
// A bare major version such as "OS 14" reads as 14.0.
func iosVersion(ua string) (*semver.Version, bool) {
	m := iosVersionRegex.FindStringSubmatch(ua)
	if m == nil {
		return nil, false
	}
	minor := m[2]
	if minor == "" {
		minor = "0"
	}
	raw := m[1] + "." + minor
	if m[3] != "" {
		raw += "." + m[3]
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}

// safariViewControllerCollector scores whether an iOS Safari-looking page is
// actually hosted in SFSafariViewController.
type safariViewControllerCollector struct{}

func (safariViewControllerCollector) Name() string { return "safari-view-controller" }

func (c safariViewControllerCollector) Collect(env Environment, r *Result) {
	d := r.detail(c.Name())
	ua := env.UserAgent

	applicable := iosDeviceRegex.MatchString(ua) && safariTokenRegex.MatchString(ua) && appleWebKitRegex.MatchString(ua)
	d["applicable"] = applicable
	if !applicable {
		d["isSafariViewController"] = false
		return
	}

	version, known := iosVersion(ua)
	modern := known && version.Major() >= safariVCModernMajor
	threshold := safariVCThresholdLegacy
	if modern {
		threshold = safariVCThresholdModern
	}
	if known {
		d["iosVersion"] = version.String()
	}
	d["modernIOS"] = modern

	nav := env.Navigation
	score := 0

	noBridge := !env.Bridges.WebKitMessageHandlers
	score += weightIf(noBridge, safariVCNoBridge)
	score += weightIf(!env.Features.HasOpener, safariVCNoOpener)

	singleEntry := nav.HistoryLength == 1
	directNavigation := strings.EqualFold(nav.NavigationType, NavigationNavigate)
	switch {
	case singleEntry && directNavigation:
		score += safariVCSingleEntryDirect
	case singleEntry:
		score += safariVCSingleEntry
	case nav.HistoryLength > 3:
		score += safariVCLongHistory
	}

	emptyReferrer := nav.Referrer == ""
	score += weightIf(emptyReferrer, safariVCEmptyReferrer)

	browserDisplay := !env.Display.Standalone && !env.Display.Fullscreen
	score += weightIf(browserDisplay, safariVCBrowserDisplay)

	ratio := env.Geometry.HeightRatio()
	score += heightRatioWeight(ratio, modern)

	safari := env.Safari
	if modern {
		score += weightIf(safari.ExtensionAPI, safariVCExtensionModern)
		score += weightIf(safari.PushNotification, safariVCPushModern)
	} else {
		score += weightIf(safari.ExtensionAPI, safariVCExtensionLegacy)
		score += weightIf(safari.PushNotification, safariVCPushLegacy)
	}
	score += weightIf(safari.ApplePay, safariVCApplePay)
	score += weightIf(safari.ConvertPointFromPageToNode, safariVCConvertPoint)

	signature := singleEntry && directNavigation && emptyReferrer
	if signature {
		if modern {
			score += safariVCSignatureModern
		} else {
			score += safariVCSignatureLegacy
		}
	}
	if modern {
		score += safariVCModernCompensation
	}

	isVC := score >= threshold

	d["noBridge"] = noBridge
	d["hasOpener"] = env.Features.HasOpener
	d["historyLength"] = nav.HistoryLength
	d["directNavigation"] = directNavigation
	d["emptyReferrer"] = emptyReferrer
	d["browserDisplayMode"] = browserDisplay
	d["heightRatio"] = ratio
	d["safariExtensionAPI"] = safari.ExtensionAPI
	d["pushNotificationAPI"] = safari.PushNotification
	d["applePay"] = safari.ApplePay
	d["convertPointAPI"] = safari.ConvertPointFromPageToNode
	d["signaturePattern"] = signature
	d["score"] = score
	d["threshold"] = threshold
	d["isSafariViewController"] = isVC

	if !isVC {
		return
	}

	r.addMethod(MethodSafariViewController)
	if r.webViewFlagged() {
		d["suppressedByWebView"] = true
		return
	}

	r.IsSafariViewController = true
	r.IsInIOSWebView = true
	r.IsInWebView = true
	if r.DetectedApp == "" || r.DetectedApp == safariBrowserAttribution {
		r.DetectedApp = safariVCContainerName
	}
}

// heightRatioWeight scores window-to-screen height. Older iOS shows a narrow
// band for the container's toolbar; modern iOS varies more, so any compact
// ratio counts.
func heightRatioWeight(ratio float64, modern bool) int {
	if ratio <= 0 {
		return 0
	}
	if modern {
		switch {
		case ratio <= 0.8:
			return safariVCHeightRatio
		case ratio < 0.88:
			return safariVCHeightRatioMild
		}
		return 0
	}
	if ratio > 0.8 && ratio < 0.85 {
		return safariVCHeightRatio
	}
	return 0
}
