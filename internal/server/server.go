// Package server is the HTTP glue around the scrape engine: routing, CORS,
// bearer-token check, and SSE framing for the streaming variant.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"

	"github.com/fundscout/portal-scraper/config"
	"github.com/fundscout/portal-scraper/internal/model"
	"github.com/fundscout/portal-scraper/internal/scraper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Runner is the scrape engine surface the transport consumes.
type Runner interface {
	Run(ctx context.Context, opts scraper.Options) (*model.ScrapeResult, error)
	RunStreaming(ctx context.Context, opts scraper.Options, onProgress scraper.ProgressFunc) (*model.ScrapeResult, error)
}

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	runner  Runner
	results *cache.Cache
	// The portal tolerates one session at a time; concurrent scrape
	// requests are rejected rather than queued.
	running atomic.Bool
}

func New(cfg *config.Config, log *slog.Logger, runner Runner) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		runner:  runner,
		results: cache.New(cfg.CacheSettings.TtlForResult, cfg.CacheSettings.TtlForResult),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Post("/api/scrape", s.handleScrape)
		r.Get("/api/scrape/stream", s.handleScrapeStream)
	})

	return r
}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != s.cfg.APIToken {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.cfg.Version})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	enrich := r.URL.Query().Get("enrich") == "true"
	cacheKey := fmt.Sprintf("scrape:enrich=%t", enrich)

	if cached, ok := s.results.Get(cacheKey); ok {
		s.log.Debug("serving scrape result from cache.", slog.Bool("enrich", enrich))
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		s.writeError(w, http.StatusConflict, "scrape_in_progress", "another scrape is already running")
		return
	}
	defer s.running.Store(false)

	result, err := s.runner.Run(r.Context(), scraper.Options{Enrich: enrich})
	if err != nil {
		s.log.Error("scrape failed.", slog.String("err", err.Error()))
		s.writeError(w, statusFor(err), scraper.ErrorKind(err), err.Error())
		return
	}

	s.results.Set(cacheKey, result, cache.DefaultExpiration)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScrapeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}
	enrich := r.URL.Query().Get("enrich") == "true"

	if !s.running.CompareAndSwap(false, true) {
		s.writeError(w, http.StatusConflict, "scrape_in_progress", "another scrape is already running")
		return
	}
	defer s.running.Store(false)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The request context doubles as the cancellation signal: a consumer
	// disconnect stops event writes immediately and halts the in-flight
	// scrape loops through ctx propagation.
	ctx := r.Context()
	sse := &sseWriter{w: w, flusher: flusher, ctx: ctx, log: s.log}

	result, err := s.runner.RunStreaming(ctx, scraper.Options{Enrich: enrich}, func(ev model.ProgressEvent) {
		sse.writeEvent(string(ev.Kind), ev.Payload)
	})
	if err != nil {
		sse.writeEvent("error", map[string]string{
			"errorKind": scraper.ErrorKind(err),
			"message":   err.Error(),
		})
		return
	}

	sse.writeEvent("complete", map[string]any{
		"totalFound": result.TotalFound,
		"enriched":   result.Enriched,
		"durationMs": result.DurationMs,
		"timestamp":  result.Timestamp,
	})
}

// sseWriter frames events for one streaming consumer. Once the consumer's
// context is done nothing further is written.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
	log     *slog.Logger
}

func (s *sseWriter) writeEvent(kind string, payload any) {
	if s.ctx.Err() != nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal progress event.", slog.String("err", err.Error()))
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", kind, data)
	s.flusher.Flush()
}

func statusFor(err error) int {
	switch scraper.ErrorKind(err) {
	case "configuration_error":
		return http.StatusInternalServerError
	case "authentication_error":
		return http.StatusBadGateway
	case "navigation_timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response.", slog.String("err", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, map[string]string{"errorKind": kind, "message": message})
}
