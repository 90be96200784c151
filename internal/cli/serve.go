package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/events"
	"github.com/example/webview-detector/internal/server"
)

func newServeCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the detection and report collection HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			if err := cfg.ValidateSettings(); err != nil {
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(engine, logger, events.NewEmitter(cmd.OutOrStdout()))
			return srv.Run(ctx, cfg.ListenAddr)
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}
