package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
)

func newInitCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var samplePath string

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Validate the configuration and prepare the output directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.ValidateSettings(); err != nil {
				return err
			}

			if _, err := detector.DefaultRegistry.BuildPipeline(cfg.Collectors); err != nil {
				return err
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			if _, err := detector.LoadSnapshots(cfg.Snapshots); err != nil {
				return err
			}

			if samplePath != "" {
				if err := writeSampleSnapshot(samplePath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample snapshot written to %s\n", samplePath)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Environment looks good. Output will be stored in %s\n", cfg.OutputDir)
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().StringVar(&samplePath, "write-sample", "", "Write an example snapshot to this path")

	return cmd
}

// sampleSnapshot is an Android System WebView page opened from an in-app link.
func sampleSnapshot() detector.Environment {
	return detector.Environment{
		UserAgent: "Mozilla/5.0 (Linux; Android 13; Pixel 7 Build/TQ3A.230805.001; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/116.0.0.0 Mobile Safari/537.36",
		Bridges:   detector.Bridges{AndroidInterface: true},
		Features: detector.Features{
			CookiesEnabled: true,
			Geolocation:    true,
		},
		Navigation: detector.Navigation{
			URL:                "https://example.com/checkout",
			HistoryLength:      1,
			NavigationType:     detector.NavigationNavigate,
			DOMContentLoadedMs: 420,
		},
		Geometry: detector.Geometry{
			InnerWidth:       412,
			InnerHeight:      839,
			ScreenWidth:      412,
			ScreenHeight:     915,
			DevicePixelRatio: 2.625,
		},
	}
}

func writeSampleSnapshot(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	data, err := json.MarshalIndent(sampleSnapshot(), "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := ensureOutputDir(dir); err != nil {
			return err
		}
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
