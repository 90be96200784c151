package cli

import (
	"github.com/example/webview-detector/internal/config"
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags "-X".
var version = "dev"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	loader := &config.Loader{ConfigPath: config.DefaultConfigPath}
	rootOpts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "wvdetect",
		Short:         "Classify browser environment snapshots as WebView, Custom Tab, SFSafariViewController or native browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("wvdetect version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", config.DefaultConfigPath, "Path to wvdetect.config.yml (optional)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if rootOpts.ConfigPath != "" {
			loader.ConfigPath = rootOpts.ConfigPath
		}
	}

	rootCmd.AddCommand(
		newInitCmd(loader),
		newDetectCmd(loader),
		newReportCmd(loader),
		newServeCmd(loader),
		newDoctorCmd(loader),
	)

	return rootCmd
}

type rootOptions struct {
	ConfigPath string
}
