package detector

import (
	"go.uber.org/zap"
)

// Engine runs the collector pipeline, the scorer and the resolver.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	pipeline []Collector
	scorer   Scorer
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-collector debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScorer replaces the confidence scorer.
func WithScorer(s Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithPipeline replaces the collector pipeline. Callers are expected to build
// it with Registry.BuildPipeline so the canonical order holds.
func WithPipeline(pipeline []Collector) Option {
	return func(e *Engine) {
		e.pipeline = pipeline
	}
}

// NewEngine builds an engine with every built-in collector and the compat scorer.
func NewEngine(opts ...Option) *Engine {
	pipeline, _ := DefaultRegistry.BuildPipeline(nil)
	e := &Engine{
		pipeline: pipeline,
		scorer:   CompatScorer{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collectors returns the names of the pipeline stages in execution order.
func (e *Engine) Collectors() []string {
	names := make([]string, 0, len(e.pipeline))
	for _, c := range e.pipeline {
		names = append(names, c.Name())
	}
	return names
}

// Detect classifies one environment snapshot. It never fails and never blocks.
func (e *Engine) Detect(env Environment) Result {
	r := newResult(env)

	for _, c := range e.pipeline {
		before := len(r.DetectionMethods)
		c.Collect(env, r)
		if ce := e.logger.Check(zap.DebugLevel, "collector finished"); ce != nil {
			ce.Write(
				zap.String("collector", c.Name()),
				zap.Strings("fired", r.DetectionMethods[before:]),
			)
		}
	}

	r.Confidence = e.scorer.Score(r.DetectionMethods)
	resolve(r)

	e.logger.Debug("detection resolved",
		zap.String("result", string(r.DetectionResult)),
		zap.Int("confidence", r.Confidence),
		zap.String("detectedApp", r.DetectedApp),
	)

	return *r
}

var defaultEngine = NewEngine()

// Detect classifies env with the default engine.
func Detect(env Environment) Result {
	return defaultEngine.Detect(env)
}
