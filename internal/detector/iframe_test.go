package detector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIframeCollector(t *testing.T) {
	tests := []struct {
		name        string
		env         Environment
		inIframe    bool
		crossDomain bool
		techniques  []string
	}{
		{
			name: "top level page",
			env: Environment{
				Navigation: Navigation{URL: "https://example.com/", Referrer: "https://example.com/prev"},
				Geometry:   Geometry{InnerWidth: 390, InnerHeight: 700, ScreenWidth: 390, ScreenHeight: 844},
			},
		},
		{
			name:       "same origin iframe",
			env:        Environment{Frame: Frame{TopDiffers: true, ParentDiffers: true}},
			inIframe:   true,
			techniques: []string{"self-top", "parent-self"},
		},
		{
			name:        "cross origin security error",
			env:         Environment{Frame: Frame{TopAccessDenied: true}},
			inIframe:    true,
			crossDomain: true,
			techniques:  []string{"top-access-denied"},
		},
		{
			name: "referrer from another host",
			env: Environment{
				Navigation: Navigation{URL: "https://widget.example.com/", Referrer: "https://host.example.org/page"},
			},
			inIframe:   true,
			techniques: []string{"referrer-host"},
		},
		{
			name: "android-app referrer is ignored",
			env: Environment{
				Navigation: Navigation{URL: "https://example.com/", Referrer: "android-app://com.example.app"},
			},
		},
		{
			name: "constrained dimensions as last resort",
			env: Environment{
				Geometry: Geometry{InnerWidth: 300, InnerHeight: 250, ScreenWidth: 1920, ScreenHeight: 1080},
			},
			inIframe:   true,
			techniques: []string{"dimensions"},
		},
		{
			name: "dimensions skipped when stronger technique fired",
			env: Environment{
				Frame:    Frame{TopDiffers: true},
				Geometry: Geometry{InnerWidth: 300, InnerHeight: 250, ScreenWidth: 1920, ScreenHeight: 1080},
			},
			inIframe:   true,
			techniques: []string{"self-top"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResult(tt.env)
			iframeCollector{}.Collect(tt.env, r)

			d := r.Details["iframe"]
			require.Equal(t, tt.inIframe, r.IsInIframe)
			require.Equal(t, tt.crossDomain, d["crossDomain"])
			if tt.techniques == nil {
				require.Empty(t, d["techniques"])
			} else {
				require.Equal(t, tt.techniques, d["techniques"])
			}
			require.Empty(t, r.DetectionMethods)
		})
	}
}

func TestIframeCollectorRecordsReferrerParseError(t *testing.T) {
	env := Environment{Navigation: Navigation{URL: "https://example.com/", Referrer: "http://[::1"}}
	r := newResult(env)
	iframeCollector{}.Collect(env, r)

	require.False(t, r.IsInIframe)
	require.Contains(t, r.Details["iframe"], "referrerParseError")
}
