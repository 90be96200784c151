package detector

// limitedFeatureThreshold is the number of missing capabilities that hints at a restricted WebView.
const limitedFeatureThreshold = 3

// featureCollector counts missing browser capabilities. It is weak evidence and
// never overrides a native browser classification made earlier in the pipeline.
type featureCollector struct{}

func (featureCollector) Name() string { return "features" }

func (c featureCollector) Collect(env Environment, r *Result) {
	f := env.Features

	missing := 0
	for _, present := range []bool{
		f.ServiceWorker,
		f.DeviceMemory,
		f.Battery,
		f.Share,
		f.Notification,
		f.HasOpener,
	} {
		if !present {
			missing++
		}
	}

	storageFailed := f.LocalStorage.Failed()
	if storageFailed {
		r.addMethod(MethodLocalStorageRestricted)
	}

	limited := missing >= limitedFeatureThreshold
	nativeSeen := r.IsInNativeBrowser || r.HasMethod(MethodNativeBrowser)
	flagged := false
	if limited && androidRegex.MatchString(env.UserAgent) && !nativeSeen {
		r.IsInAndroidWebView = true
		r.addMethod(MethodLimitedFeatures)
		flagged = true
	}

	d := r.detail(c.Name())
	d["localStorage"] = !storageFailed
	if f.LocalStorage.Error != "" {
		d["localStorageError"] = f.LocalStorage.Error
	}
	d["serviceWorker"] = f.ServiceWorker
	d["cookiesEnabled"] = f.CookiesEnabled
	d["deviceMemory"] = f.DeviceMemory
	d["battery"] = f.Battery
	d["share"] = f.Share
	d["notification"] = f.Notification
	d["geolocation"] = f.Geolocation
	d["hasOpener"] = f.HasOpener
	d["missingCount"] = missing
	d["limited"] = limited
	d["flaggedAndroidWebView"] = flagged
}
