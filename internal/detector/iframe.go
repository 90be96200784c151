package detector

import (
	"net/url"
	"strings"
)

// iframeDimensionRatio is the inner/screen ratio below which both axes count as constrained.
const iframeDimensionRatio = 0.8

// iframeCollector checks whether the page is embedded in a frame. Its evidence
// lives in details only: framing is independent of the container type.
type iframeCollector struct{}

func (iframeCollector) Name() string { return "iframe" }

func (c iframeCollector) Collect(env Environment, r *Result) {
	d := r.detail(c.Name())
	f := env.Frame

	var techniques []string
	crossDomain := false

	if f.TopAccessDenied {
		techniques = append(techniques, "top-access-denied")
		crossDomain = true
	} else if f.TopDiffers {
		techniques = append(techniques, "self-top")
	}

	if f.ParentDiffers {
		techniques = append(techniques, "parent-self")
	}

	refHost, pageHost, err := referrerHosts(env.Navigation)
	if err != nil {
		d["referrerParseError"] = err.Error()
	} else if refHost != "" && pageHost != "" && !strings.EqualFold(refHost, pageHost) {
		techniques = append(techniques, "referrer-host")
		d["referrerHost"] = refHost
	}

	widthRatio := env.Geometry.WidthRatio()
	heightRatio := env.Geometry.HeightRatio()
	constrained := widthRatio > 0 && heightRatio > 0 &&
		widthRatio < iframeDimensionRatio && heightRatio < iframeDimensionRatio
	if constrained && len(techniques) == 0 {
		techniques = append(techniques, "dimensions")
	}

	r.IsInIframe = len(techniques) > 0

	d["isInIframe"] = r.IsInIframe
	d["crossDomain"] = crossDomain
	d["techniques"] = techniques
	d["widthRatio"] = widthRatio
	d["heightRatio"] = heightRatio
}

// referrerHosts returns the hosts of the http(s) referrer and the page URL.
// Non-web referrers such as android-app:// yield an empty referrer host.
func referrerHosts(nav Navigation) (string, string, error) {
	if nav.Referrer == "" || nav.URL == "" {
		return "", "", nil
	}

	ref, err := url.Parse(nav.Referrer)
	if err != nil {
		return "", "", err
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", "", nil
	}

	page, err := url.Parse(nav.URL)
	if err != nil {
		return "", "", err
	}

	return ref.Hostname(), page.Hostname(), nil
}
