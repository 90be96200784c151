package detector

import "regexp"

// appSignature is a known hosting application identified by its user agent token.
type appSignature struct {
	name   string
	method string
	match  *regexp.Regexp
}

// appSignatures is ordered by priority; the first match wins.
var appSignatures = []appSignature{
	{name: "Facebook App", method: "facebook_app", match: regexp.MustCompile(`FBAN|FBAV|FB_IAB|FBIOS`)},
	{name: "Twitter App", method: "twitter_app", match: regexp.MustCompile(`(?i)Twitter`)},
	{name: "Instagram App", method: "instagram_app", match: regexp.MustCompile(`Instagram`)},
	{name: "LinkedIn App", method: "linkedin_app", match: regexp.MustCompile(`LinkedInApp`)},
	{name: "Pinterest App", method: "pinterest_app", match: regexp.MustCompile(`(?i)Pinterest`)},
	{name: "Snapchat App", method: "snapchat_app", match: regexp.MustCompile(`Snapchat`)},
	{name: "WhatsApp", method: "whatsapp_app", match: regexp.MustCompile(`WhatsApp`)},
	{name: "WeChat", method: "wechat_app", match: regexp.MustCompile(`MicroMessenger`)},
	{name: "LINE App", method: "line_app", match: regexp.MustCompile(`\bLine/`)},
	{name: "Telegram App", method: "telegram_app", match: regexp.MustCompile(`Telegram`)},
	{name: "UC Browser", method: "uc_browser", match: regexp.MustCompile(`UCBrowser`)},
	{name: "Opera Mini", method: "opera_mini", match: regexp.MustCompile(`Opera Mini`)},
	{name: "Firefox Focus", method: "firefox_focus", match: regexp.MustCompile(`Focus/`)},
	{name: "Crosswalk WebView", method: "crosswalk_webview", match: regexp.MustCompile(`Crosswalk`)},
	{name: "Google App", method: "google_app", match: regexp.MustCompile(`GSA/`)},
	{name: "Amazon App", method: "amazon_app", match: regexp.MustCompile(`AmazonWebAppPlatform|AMZN|Amazon App`)},
}

// appPatternCollector attributes the page to a known hosting application.
type appPatternCollector struct{}

func (appPatternCollector) Name() string { return "app-patterns" }

func (c appPatternCollector) Collect(env Environment, r *Result) {
	d := r.detail(c.Name())
	for _, sig := range appSignatures {
		if sig.match.MatchString(env.UserAgent) {
			r.DetectedApp = sig.name
			r.addMethod(sig.method)
			d["matched"] = sig.name
			d["pattern"] = sig.match.String()
			return
		}
	}
	d["matched"] = ""
}
