package cli

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
)

const (
	statusOK      = "✓"
	statusFailed  = "✗"
	statusSkipped = "⊘"

	maxSnapshotChecks = 5
)

type doctorCheck struct {
	Name   string
	Status string
	Detail string
	Error  error
}

func newDoctorCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var timeout int

	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Validate configuration, snapshots and endpoint reachability",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `The doctor subcommand validates the wvdetect environment:
- Go runtime version
- Configuration and collector selection
- Readability of configured snapshots
- Reachability of the report endpoint
- Output directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
			defer cancel()

			checks := runDoctorChecks(ctx, &cfg)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n"+color.GreenString(statusOK)+" All checks passed. System is ready.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Timeout in seconds for network checks")

	return cmd
}

func runDoctorChecks(ctx context.Context, cfg *config.RuntimeConfig) []doctorCheck {
	checks := []doctorCheck{checkGoVersion(), checkConfiguration(cfg)}
	checks = append(checks, checkSnapshots(cfg.Snapshots)...)
	checks = append(checks, checkEndpoint(ctx, cfg.Endpoint, cfg.DryRun))
	checks = append(checks, checkOutputDirectory(cfg.OutputDir))
	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: statusOK,
		Detail: fmt.Sprintf("Version %s", runtime.Version()),
	}
}

func checkConfiguration(cfg *config.RuntimeConfig) doctorCheck {
	check := doctorCheck{Name: "Configuration"}

	err := cfg.ValidateSettings()
	if err == nil {
		_, err = detector.DefaultRegistry.BuildPipeline(cfg.Collectors)
	}
	if err != nil {
		check.Status = statusFailed
		check.Detail = "Invalid configuration"
		check.Error = err
		return check
	}

	check.Status = statusOK
	check.Detail = fmt.Sprintf("%d snapshots, confidence=%s, workers=%d", len(cfg.Snapshots), cfg.ConfidenceMode, cfg.Workers)
	return check
}

func checkSnapshots(paths []string) []doctorCheck {
	if len(paths) == 0 {
		return []doctorCheck{{Name: "Snapshots", Status: statusSkipped, Detail: "None configured"}}
	}

	total := len(paths)
	if total > maxSnapshotChecks {
		paths = paths[:maxSnapshotChecks]
	}

	checks := make([]doctorCheck, 0, len(paths)+1)
	for _, path := range paths {
		check := doctorCheck{Name: fmt.Sprintf("Snapshot: %s", path)}
		snap, err := detector.LoadSnapshot(path)
		if err != nil {
			check.Status = statusFailed
			check.Detail = "Unreadable"
			check.Error = err
		} else {
			check.Status = statusOK
			check.Detail = "Readable"
			if snap.Environment.UserAgent == "" {
				check.Detail = "Readable (no user agent)"
			}
		}
		checks = append(checks, check)
	}

	if total > maxSnapshotChecks {
		checks = append(checks, doctorCheck{
			Name:   fmt.Sprintf("Snapshots: ... (%d more)", total-maxSnapshotChecks),
			Status: statusSkipped,
			Detail: "Skipped for brevity",
		})
	}

	return checks
}

func checkEndpoint(ctx context.Context, endpoint string, dryRun bool) doctorCheck {
	check := doctorCheck{Name: "Report Endpoint"}
	switch {
	case endpoint == "":
		check.Status = statusSkipped
		check.Detail = "Not configured"
		return check
	case dryRun:
		check.Status = statusSkipped
		check.Detail = "Skipped (dry-run mode)"
		return check
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		check.Status = statusFailed
		check.Detail = "Invalid URL"
		check.Error = err
		return check
	}

	resp, err := client.Do(req)
	if err != nil {
		check.Status = statusFailed
		check.Detail = "Unreachable"
		check.Error = err
		return check
	}
	resp.Body.Close()

	// Collectors often only accept POST; any HTTP answer proves reachability.
	check.Status = statusOK
	check.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
	return check
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: statusFailed,
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: statusOK,
		Detail: outputDir,
	}
}

func colorStatus(status string) string {
	switch status {
	case statusOK:
		return color.GreenString(status)
	case statusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-30s %s\n", colorStatus(check.Status), check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
