// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/tkorhonen/opprec/internal/app"
	"github.com/tkorhonen/opprec/internal/domain/types"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Suggest returns ranked suggestions for one request.
	Suggest(ctx context.Context, params service.SuggestParams) ([]types.Suggestion, error)

	// PathSteps ranks training opportunities by missing-skill coverage.
	PathSteps(ctx context.Context, missing []string) ([]types.Step, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	suggestionsHandler *SuggestionsHandler
	pathStepsHandler   *PathStepsHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxURIListLen caps the skill/interest URI list length per request.
func WithMaxURIListLen(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.suggestionsHandler.maxURIs = n
			s.pathStepsHandler.maxURIs = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		suggestionsHandler: NewSuggestionsHandler(deps),
		pathStepsHandler:   NewPathStepsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/api/v1/suggestions",
		MetricsMiddleware(s.suggestionsHandler.HandlePostSuggestions, "suggestions"))
	mux.HandleFunc("/api/v1/path-steps",
		MetricsMiddleware(s.pathStepsHandler.HandlePostPathSteps, "path_steps"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
