// Package server provides the HTTP JSON API for the resume tailor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/chat"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

// DefaultMaxUploadBytes bounds multipart request bodies
const DefaultMaxUploadBytes = 10 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	client      llm.Client
	generator   *generation.Generator
	reducer     *chat.Reducer
	runner      *pipeline.Runner
	extractor   *ingestion.Extractor
	jobFetch    ingestion.JobFetchOptions
	geometry    rendering.Geometry
	maxUpload   int64
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port        int
	Client      llm.Client
	Generation  generation.Options
	Chat        chat.Options
	Extractor   ingestion.ExtractorConfig
	JobFetch    ingestion.JobFetchOptions
	Geometry    rendering.Geometry
	Concurrency int
	RateLimit   *ratelimit.Config // nil uses ratelimit.DefaultConfig
	Logger      *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("server: an LLM client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Generation.Logger == nil {
		cfg.Generation.Logger = logger
	}
	if cfg.Chat.Logger == nil {
		cfg.Chat.Logger = logger
	}
	if cfg.JobFetch.Logger == nil {
		cfg.JobFetch.Logger = logger
	}
	if cfg.Geometry == (rendering.Geometry{}) {
		cfg.Geometry = rendering.DefaultGeometry()
	}
	if cfg.Extractor.MaxBytes == 0 && cfg.Extractor.MinTextLength == 0 && len(cfg.Extractor.AllowedTypes) == 0 {
		cfg.Extractor = ingestion.DefaultExtractorConfig()
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.DefaultConfig()
	}

	generator := generation.New(cfg.Client, cfg.Generation)
	extractor := ingestion.NewExtractor(cfg.Extractor)

	s := &Server{
		client:    cfg.Client,
		generator: generator,
		reducer:   chat.NewReducer(cfg.Client, cfg.Chat),
		runner: &pipeline.Runner{
			Generator:   generator,
			Extractor:   extractor,
			JobFetch:    cfg.JobFetch,
			Concurrency: cfg.Concurrency,
			Logger:      logger,
		},
		extractor:   extractor,
		jobFetch:    cfg.JobFetch,
		geometry:    cfg.Geometry,
		maxUpload:   DefaultMaxUploadBytes,
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		validator:   newValidator(),
		logger:      logger,
	}
	if cfg.Extractor.MaxBytes > 0 {
		// leave room for the multipart envelope and the other form fields
		s.maxUpload = cfg.Extractor.MaxBytes + 1<<20
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Ingestion
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /job/fetch", s.handleJobFetch)

	// Generation
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze/stream", s.handleAnalyzeStream)
	mux.HandleFunc("POST /keywords", s.handleKeywords)
	mux.HandleFunc("POST /suggestions", s.handleSuggestions)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /chat", s.handleChat)

	// Documents
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /layout", s.handleLayout)
	mux.HandleFunc("POST /export/{format}", s.handleExport)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for full tailoring runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server and releases the rate limiter and LLM client
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.rateLimiter.Stop()
	if closeErr := s.client.Close(); closeErr != nil {
		s.logger.Warn("failed to close LLM client", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.logger.Warn("rate limit exceeded",
				"client", clientID,
				"method", r.Method,
				"path", r.URL.Path,
				"limit", info.Limit,
				"reset_at", info.ResetTime.Format(time.RFC3339),
			)
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// withLogging assigns a request ID and logs every request with its status and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

// requestLogger returns the server logger annotated with the request ID
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

// statusRecorder captures the response status for logging. It forwards Flush so
// server-sent events keep streaming through the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
