package cli

import (
	"fmt"

	"github.com/example/webview-detector/internal/config"
	"github.com/spf13/cobra"
)

// runtimeFlagSet tracks shared command flags before they are converted into config overrides.
type runtimeFlagSet struct {
	snapshots      string
	snapshotsFile  string
	confidenceMode string
	collectors     string
	workers        int
	outputDir      string
	formats        string
	endpoint       string
	dryRun         bool
	summaryFile    string
	listenAddr     string
	logLevel       string
	logFormat      string
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.snapshots, "snapshots", "", "Comma-separated list of snapshot files (overrides config)")
	cmd.Flags().StringVar(&flags.snapshotsFile, "snapshots-file", "", "Path to a file with one snapshot path per line")
	cmd.Flags().StringVar(&flags.confidenceMode, "confidence-mode", "", "Confidence scorer: compat or weighted")
	cmd.Flags().StringVar(&flags.collectors, "collectors", "", "Comma-separated collectors to run (user-agent,bridge,...)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, fmt.Sprintf("Number of snapshots classified concurrently (1-%d)", config.MaxWorkers))
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for detection artifacts")
	cmd.Flags().StringVar(&flags.formats, "formats", "", "Comma-separated output formats (json,csv)")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "Collection endpoint that receives detection reports")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print report payloads instead of sending them")
	cmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "Optional summary JSON output path")
	cmd.Flags().StringVar(&flags.listenAddr, "listen", "", "Address the HTTP service listens on")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("snapshots") {
		ov.Snapshots = config.ParseList(f.snapshots)
	}

	if cmd.Flags().Changed("snapshots-file") {
		ov.SnapshotsFile = f.snapshotsFile
	}

	if cmd.Flags().Changed("confidence-mode") {
		ov.ConfidenceMode = f.confidenceMode
	}

	if cmd.Flags().Changed("collectors") {
		ov.Collectors = config.ParseNames(f.collectors)
	}

	if cmd.Flags().Changed("workers") {
		ov.Workers = f.workers
		ov.WorkersSet = true
	}

	if cmd.Flags().Changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if cmd.Flags().Changed("formats") {
		ov.Formats = config.ParseNames(f.formats)
	}

	if cmd.Flags().Changed("endpoint") {
		ov.Endpoint = f.endpoint
	}

	if cmd.Flags().Changed("dry-run") {
		ov.DryRun = &f.dryRun
	}

	if cmd.Flags().Changed("summary-file") {
		ov.SummaryFile = f.summaryFile
	}

	if cmd.Flags().Changed("listen") {
		ov.ListenAddr = f.listenAddr
	}

	if cmd.Flags().Changed("log-level") {
		ov.LogLevel = f.logLevel
	}

	if cmd.Flags().Changed("log-format") {
		ov.LogFormat = f.logFormat
	}

	return ov
}
