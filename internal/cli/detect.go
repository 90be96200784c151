package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
	"github.com/example/webview-detector/internal/events"
)

func newDetectCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:           "detect",
		Short:         "Classify environment snapshots and write detection artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			if len(args) > 0 {
				overrides.Snapshots = append(overrides.Snapshots, args...)
			}

			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			engine, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Record(events.TypeDetectStart, "Starting detection", map[string]interface{}{
				"snapshots":      len(cfg.Snapshots),
				"confidenceMode": cfg.ConfidenceMode,
				"workers":        cfg.Workers,
				"collectors":     engine.Collectors(),
			}); err != nil {
				return err
			}

			snapshots, err := detector.LoadSnapshots(cfg.Snapshots)
			if err != nil {
				return err
			}

			outcomes, err := detector.RunBatch(cmd.Context(), engine, snapshots, cfg.Workers)
			if err != nil {
				return err
			}

			for _, out := range outcomes {
				logger.Info("snapshot classified",
					zap.String("source", out.Source),
					zap.String("result", string(out.Result.DetectionResult)),
					zap.Int("confidence", out.Result.Confidence),
				)
				if err := emitter.Record(events.TypeDetection, out.Source, detectionFields(out)); err != nil {
					return err
				}
			}

			timestamp := time.Now().UTC().Format("20060102_150405")
			var artifacts []string

			for _, format := range cfg.Formats {
				format = strings.ToLower(strings.TrimSpace(format))
				if format == "" {
					continue
				}

				outputPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("detect_%s.%s", timestamp, format))
				if err := writeArtifact(outputPath, format, outcomes); err != nil {
					return err
				}

				artifacts = append(artifacts, outputPath)
				if err := emitter.Record(events.TypeArtifactWritten, "", map[string]interface{}{"path": outputPath, "format": format}); err != nil {
					return err
				}
			}

			if cfg.SummaryFile != "" {
				if err := writeSummary(cfg.SummaryFile, cfg, outcomes, artifacts); err != nil {
					return err
				}
			}

			return emitter.Record(events.TypeDetectFinished, "Detection complete", map[string]interface{}{
				"snapshots": len(outcomes),
				"artifacts": len(artifacts),
				"labels":    countLabels(outcomes),
			})
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

func detectionFields(out detector.Outcome) map[string]interface{} {
	fields := map[string]interface{}{
		"source":     out.Source,
		"result":     out.Result.DetectionResult,
		"confidence": out.Result.Confidence,
		"methods":    out.Result.DetectionMethods,
		"inIframe":   out.Result.IsInIframe,
	}
	if out.Result.DetectedApp != "" {
		fields["detectedApp"] = out.Result.DetectedApp
	}
	if out.Result.LaunchingApp != "" {
		fields["launchingApp"] = out.Result.LaunchingApp
	}
	return fields
}

var csvHeader = []string{
	"source",
	"detectionResult",
	"confidence",
	"isInWebView",
	"isInAndroidWebView",
	"isInIOSWebView",
	"isInNativeBrowser",
	"isAndroidCustomTab",
	"isSafariViewController",
	"isInIframe",
	"detectedApp",
	"launchingApp",
	"detectionMethods",
}

func writeArtifact(path, format string, outcomes []detector.Outcome) error {
	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	case "csv":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		w := csv.NewWriter(file)
		_ = w.Write(csvHeader)
		for _, out := range outcomes {
			r := out.Result
			_ = w.Write([]string{
				out.Source,
				string(r.DetectionResult),
				strconv.Itoa(r.Confidence),
				strconv.FormatBool(r.IsInWebView),
				strconv.FormatBool(r.IsInAndroidWebView),
				strconv.FormatBool(r.IsInIOSWebView),
				strconv.FormatBool(r.IsInNativeBrowser),
				strconv.FormatBool(r.IsAndroidCustomTab),
				strconv.FormatBool(r.IsSafariViewController),
				strconv.FormatBool(r.IsInIframe),
				r.DetectedApp,
				r.LaunchingApp,
				strings.Join(r.DetectionMethods, ";"),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

func countLabels(outcomes []detector.Outcome) map[string]int {
	counts := map[string]int{}
	for _, out := range outcomes {
		counts[string(out.Result.DetectionResult)]++
	}
	return counts
}

func writeSummary(path string, cfg config.RuntimeConfig, outcomes []detector.Outcome, artifacts []string) error {
	summary := map[string]interface{}{
		"generatedAt":    time.Now().UTC().Format(time.RFC3339),
		"snapshots":      cfg.Snapshots,
		"confidenceMode": cfg.ConfidenceMode,
		"labels":         countLabels(outcomes),
		"artifacts":      artifacts,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
