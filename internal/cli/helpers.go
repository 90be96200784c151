package cli

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/example/webview-detector/internal/config"
	"github.com/example/webview-detector/internal/detector"
	"github.com/example/webview-detector/internal/logging"
)

func ensureOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return os.MkdirAll(path, 0o755)
}

func newLogger(cfg config.RuntimeConfig, w io.Writer) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: w})
}

// newEngine builds the detection engine selected by the collector list and confidence mode.
func newEngine(cfg config.RuntimeConfig, logger *zap.Logger) (*detector.Engine, error) {
	pipeline, err := detector.DefaultRegistry.BuildPipeline(cfg.Collectors)
	if err != nil {
		return nil, err
	}

	scorer, ok := detector.ScorerForMode(cfg.ConfidenceMode)
	if !ok {
		return nil, fmt.Errorf("unknown confidence mode %q", cfg.ConfidenceMode)
	}

	return detector.NewEngine(
		detector.WithPipeline(pipeline),
		detector.WithScorer(scorer),
		detector.WithLogger(logger),
	), nil
}
