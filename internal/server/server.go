// Package server exposes detection, report collection and header classification over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/webview-detector/internal/detector"
	"github.com/example/webview-detector/internal/events"
	"github.com/example/webview-detector/internal/headers"
	"github.com/example/webview-detector/internal/report"
)

const bodyLimit = 1 << 20

// Server serves the detection API.
type Server struct {
	engine  *detector.Engine
	logger  *zap.Logger
	emitter *events.Emitter
}

// New returns a server. A nil engine uses the default pipeline; a nil emitter disables events.
func New(engine *detector.Engine, logger *zap.Logger, emitter *events.Emitter) *Server {
	if engine == nil {
		engine = detector.NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, logger: logger, emitter: emitter}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(headers.Middleware)

	r.Get("/healthz", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/detect", s.detect)
		r.Post("/reports", s.receiveReport)
		r.Get("/classification", s.classification)
	})
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"collectors": s.engine.Collectors(),
	})
}

// detect classifies a posted environment snapshot. An empty user agent is
// taken from the request itself.
func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	env, ok := readJSON[detector.Environment](w, r)
	if !ok {
		return
	}
	if env.UserAgent == "" {
		env.UserAgent = r.UserAgent()
	}

	result := s.engine.Detect(env)
	s.record(events.TypeDetection, "detected "+string(result.DetectionResult), map[string]interface{}{
		"source":     "http",
		"result":     result.DetectionResult,
		"confidence": result.Confidence,
		"requestId":  chimw.GetReqID(r.Context()),
	})
	writeJSON(w, http.StatusOK, result)
}

type receipt struct {
	Received bool   `json:"received"`
	ID       string `json:"id"`
}

func (s *Server) receiveReport(w http.ResponseWriter, r *http.Request) {
	payload, ok := readJSON[report.Payload](w, r)
	if !ok {
		return
	}
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	s.logger.Info("report received",
		zap.String("reportId", payload.ID),
		zap.String("result", string(payload.Result.DetectionResult)),
		zap.String("detectedApp", payload.Result.DetectedApp),
		zap.String("url", payload.URL),
	)
	s.record(events.TypeReportReceived, "report "+payload.ID, map[string]interface{}{
		"reportId":    payload.ID,
		"result":      payload.Result.DetectionResult,
		"detectedApp": payload.Result.DetectedApp,
		"url":         payload.URL,
	})

	writeJSON(w, http.StatusOK, receipt{Received: true, ID: payload.ID})
}

type classificationResponse struct {
	headers.Classification
	Label detector.Label `json:"label"`
}

func (s *Server) classification(w http.ResponseWriter, r *http.Request) {
	c, ok := headers.FromContext(r.Context())
	if !ok {
		c = headers.Parse(r.Header)
	}
	writeJSON(w, http.StatusOK, classificationResponse{Classification: c, Label: c.Label()})
}

func (s *Server) record(eventType, message string, fields map[string]interface{}) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Record(eventType, message, fields); err != nil {
		s.logger.Warn("emit event", zap.String("type", eventType), zap.Error(err))
	}
}

func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
