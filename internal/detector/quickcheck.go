package detector

// quickCheck runs before the collectors and raises the Android WebView flag
// for the one user agent token that no native browser ever sends.
type quickCheck struct{}

func (quickCheck) Name() string { return "quick-check" }

func (c quickCheck) Collect(env Environment, r *Result) {
	direct := androidRegex.MatchString(env.UserAgent) && wvTokenRegex.MatchString(env.UserAgent)
	if direct {
		r.IsInAndroidWebView = true
		r.addMethod(MethodDirectAndroidWV)
	}

	r.detail(c.Name())["androidWvToken"] = direct
}
