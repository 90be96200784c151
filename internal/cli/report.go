package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
	"github.com/example/webview-detector/internal/events"
	"github.com/example/webview-detector/internal/report"
)

func newReportCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var retries uint64

	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Classify snapshots and send the results to a collection endpoint",
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

			if cfg.Endpoint == "" && !cfg.DryRun {
				return errors.New("no endpoint configured; provide --endpoint or use --dry-run")
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

			snapshots, err := detector.LoadSnapshots(cfg.Snapshots)
			if err != nil {
				return err
			}

			outcomes, err := detector.RunBatch(cmd.Context(), engine, snapshots, cfg.Workers)
			if err != nil {
				return err
			}

			emitter := events.NewEmitter(cmd.OutOrStdout())
			client := report.NewClient(cfg.Endpoint,
				report.WithLogger(logger),
				report.WithRetries(retries, 200*time.Millisecond),
			)

			now := time.Now()
			failed := 0
			for i, out := range outcomes {
				payload := report.BuildPayload(snapshots[i].Environment, out.Result, now)

				if cfg.DryRun {
					if err := emitter.Record(events.TypeReportSent, out.Source, map[string]interface{}{
						"dryRun":  true,
						"payload": payload,
					}); err != nil {
						return err
					}
					continue
				}

				result := client.Send(cmd.Context(), payload)
				fields := map[string]interface{}{
					"source":     out.Source,
					"reportId":   result.ReportID,
					"statusCode": result.StatusCode,
					"attempts":   result.Attempts,
				}
				eventType := events.TypeReportSent
				if !result.OK() {
					failed++
					eventType = events.TypeReportFailed
					fields["error"] = result.Error
				}
				if err := emitter.Record(eventType, out.Source, fields); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d reports failed", failed, len(outcomes))
			}
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().Uint64Var(&retries, "retries", 3, "Retries for transient delivery failures")

	return cmd
}
