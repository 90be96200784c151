package detector

import "math"

// defaultMethodWeight applies to methods missing from MethodWeights.
const defaultMethodWeight = 50

// MethodWeights is how strongly each detection method indicates its classification.
var MethodWeights = map[string]float64{
	MethodDirectAndroidWV:        95,
	MethodUserAgentAndroidWV:     95,
	MethodUserAgentAndroid:       75,
	MethodUserAgentIOS:           85,
	MethodNativeBrowser:          90,
	MethodAndroidBridge:          100,
	MethodIOSBridge:              100,
	MethodReactNativeBridge:      100,
	MethodFlutterBridge:          100,
	MethodLocalStorageRestricted: 30,
	MethodLimitedFeatures:        40,
	MethodChromeCustomTab:        85,
	MethodSafariViewController:   80,
	"facebook_app":               90,
	"twitter_app":                90,
	"instagram_app":              90,
	"linkedin_app":               90,
	"pinterest_app":              85,
	"snapchat_app":               85,
	"whatsapp_app":               85,
	"wechat_app":                 90,
	"line_app":                   85,
	"telegram_app":               85,
	"uc_browser":                 60,
	"opera_mini":                 60,
	"firefox_focus":              60,
	"crosswalk_webview":          90,
	"google_app":                 80,
	"amazon_app":                 80,
}

func methodWeight(method string) float64 {
	if w, ok := MethodWeights[method]; ok {
		return w
	}
	return defaultMethodWeight
}

// Scorer maps the fired detection methods to a 0-100 confidence.
type Scorer interface {
	Score(methods []string) int
}

// CompatScorer divides the weight sum by itself, so any fired method yields
// 100 and none yields 0. Resolver thresholds were tuned against this output.
type CompatScorer struct{}

// Score implements Scorer.
func (CompatScorer) Score(methods []string) int {
	var weighted, total float64
	for _, m := range methods {
		w := methodWeight(m)
		weighted += w
		total += w
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(math.Min(100, weighted/total*100)))
}

// WeightedScorer returns the mean weight of the fired methods.
type WeightedScorer struct{}

// Score implements Scorer.
func (WeightedScorer) Score(methods []string) int {
	if len(methods) == 0 {
		return 0
	}
	var total float64
	for _, m := range methods {
		total += methodWeight(m)
	}
	return int(math.Round(math.Min(100, total/float64(len(methods)))))
}

// ScorerForMode returns the scorer configured by name ("compat" or "weighted").
func ScorerForMode(mode string) (Scorer, bool) {
	switch mode {
	case "", ModeCompat:
		return CompatScorer{}, true
	case ModeWeighted:
		return WeightedScorer{}, true
	default:
		return nil, false
	}
}

// Confidence modes.
const (
	ModeCompat   = "compat"
	ModeWeighted = "weighted"
)
