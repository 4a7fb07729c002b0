// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/tkorhonen/opprec/internal/adapters/inference"
	"github.com/tkorhonen/opprec/internal/adapters/refresh"
	"github.com/tkorhonen/opprec/internal/adapters/repository"
	"github.com/tkorhonen/opprec/internal/catalog"
	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/internal/domain/pathstep"
	"github.com/tkorhonen/opprec/internal/domain/rank"
	"github.com/tkorhonen/opprec/internal/domain/types"
	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultCatalogTTL       = time.Minute
	defaultRefreshQueueSize = 16
	defaultSkillWeight      = 0.5
	defaultInterestWeight   = 0.5
)

// SuggestParams carries one suggestion request through the engine. Nil
// weights fall back to the service defaults.
type SuggestParams struct {
	Sort      model.SortDirection
	Lang      model.Language
	Skills    []string
	Interests []string
	FreeText  string

	SkillWeight    *float64
	InterestWeight *float64
	EscoListWeight *float64
	FreeTextWeight *float64
}

// Service composes the catalog, the scoring gateway, the ranker and the path
// step scorer behind the API surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	catalog  *catalog.Catalog
	ranker   *rank.Ranker
	steps    *pathstep.Scorer
	gateway  inference.Gateway
	executor *refresh.Executor

	// Configuration
	catalogTTL       time.Duration
	refreshWorkers   int
	refreshQueueSize int
	endpoint         string
	backendName      string
	seedFile         string
	skillWeight      float64
	interestWeight   float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithCatalogTTL sets the catalog staleness window.
func WithCatalogTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.catalogTTL = ttl
		}
	}
}

// WithGateway sets the scoring gateway and the endpoint it targets. For the
// REST backend the endpoint is a URL; for the managed backend it is the
// endpoint name.
func WithGateway(gw inference.Gateway, endpoint, backendName string) Option {
	return func(s *Service) {
		if gw != nil {
			s.gateway = gw
			s.endpoint = endpoint
			s.backendName = backendName
		}
	}
}

// WithStore sets the opportunity store, replacing the built-in in-memory one.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeedFile loads the built-in store from a JSON file at startup.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
	}
}

// WithRefreshWorkerCount sets the number of background refresh workers.
func WithRefreshWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.refreshWorkers = count
		}
	}
}

// WithRefreshQueueSize sets the refresh executor queue capacity.
func WithRefreshQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.refreshQueueSize = size
		}
	}
}

// WithDefaultWeights sets the weights used when a request does not carry its
// own.
func WithDefaultWeights(skill, interest float64) Option {
	return func(s *Service) {
		if skill >= 0 {
			s.skillWeight = skill
		}
		if interest >= 0 {
			s.interestWeight = interest
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalogTTL:       defaultCatalogTTL,
		refreshWorkers:   runtime.NumCPU(),
		refreshQueueSize: defaultRefreshQueueSize,
		skillWeight:      defaultSkillWeight,
		interestWeight:   defaultInterestWeight,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting suggestion service...")

	if s.store == nil {
		store, err := repository.NewMemStore(repository.WithSeedFile(s.seedFile))
		if err != nil {
			return fmt.Errorf("initializing opportunity store: %w", err)
		}
		s.store = store
	}

	s.executor = refresh.NewExecutor(
		refresh.WithWorkerCount(s.refreshWorkers),
		refresh.WithQueueSize(s.refreshQueueSize),
		refresh.WithLogger(s.logger.Named("refresh")),
	)
	if err := s.executor.Start(ctx); err != nil {
		return fmt.Errorf("starting refresh executor: %w", err)
	}

	s.catalog = catalog.New(s.store,
		catalog.WithTTL(s.catalogTTL),
		catalog.WithExecutor(s.executor),
		catalog.WithLogger(s.logger.Named("catalog")),
	)
	// A stale snapshot left from a previous run must never be served.
	s.catalog.ClearAtStartup()

	s.ranker = rank.New(rank.WithLogger(s.logger.Named("rank")))
	s.steps = pathstep.New(s.store)

	s.started = true
	s.logger.Info(ctx, "suggestion service started",
		logger.String("backend", s.backendName),
		logger.Int("refreshWorkers", s.refreshWorkers),
		logger.Duration("catalogTTL", s.catalogTTL),
		logger.Int("opportunities", s.store.Count(ctx)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping suggestion service...")

	if s.executor != nil {
		if err := s.executor.Stop(ctx); err != nil {
			s.logger.Warn(ctx, "refresh executor stop", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "suggestion service stopped")
}

// Suggest returns one suggestion per catalog entry, ranked by backend score.
// When the request carries no signal at all (no skills, no interests, no
// free text) scoring is skipped entirely and suggestions come back unscored
// in catalog order.
func (s *Service) Suggest(ctx context.Context, params SuggestParams) ([]types.Suggestion, error) {
	metrics.RecordSuggestionRequest()

	entries, err := s.catalog.List(ctx, params.Sort, params.Lang)
	if err != nil {
		metrics.RecordSuggestionError()
		metrics.RecordErrorByComponent("catalog", "load_error")
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	if len(params.Skills) == 0 && len(params.Interests) == 0 && params.FreeText == "" {
		metrics.RecordSuggestionFallback()
		out := s.ranker.Unscored(entries)
		metrics.RecordSuggestionSize(len(out))
		return out, nil
	}

	req := inference.Request{
		SkillURIs:      params.Skills,
		InterestURIs:   params.Interests,
		FreeText:       params.FreeText,
		SkillWeight:    s.weightOr(params.SkillWeight, s.skillWeight),
		InterestWeight: s.weightOr(params.InterestWeight, s.interestWeight),
		EscoListWeight: s.weightOr(params.EscoListWeight, 0),
		FreeTextWeight: s.weightOr(params.FreeTextWeight, 0),
	}

	scores, err := s.gateway.Infer(ctx, s.endpoint, req)
	if err != nil {
		metrics.RecordSuggestionError()
		metrics.RecordErrorByComponent("inference", "gateway_error")
		return nil, fmt.Errorf("scoring request: %w", err)
	}

	ranked := make([]rank.Score, 0, len(scores))
	for _, sc := range scores {
		ranked = append(ranked, rank.Score{ID: sc.ID, Value: sc.Value})
	}

	out := s.ranker.Rank(ctx, entries, ranked)
	metrics.RecordSuggestionSize(len(out))
	return out, nil
}

// PathSteps ranks training opportunities by missing-skill coverage.
func (s *Service) PathSteps(ctx context.Context, missing []string) ([]types.Step, error) {
	set := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		if m != "" {
			set[m] = struct{}{}
		}
	}
	steps, err := s.steps.Score(ctx, set)
	if err != nil {
		metrics.RecordErrorByComponent("pathstep", "score_error")
		return nil, fmt.Errorf("scoring path steps: %w", err)
	}
	return steps, nil
}

// CatalogVersion reports the snapshot version of one catalog view.
func (s *Service) CatalogVersion(sort model.SortDirection, lang model.Language) (uint64, bool) {
	return s.catalog.Version(sort, lang)
}

func (s *Service) weightOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"backend":        s.backendName,
		"refreshWorkers": s.refreshWorkers,
		"catalogTTLSec":  int(s.catalogTTL.Seconds()),
	}

	if s.started {
		stats["opportunities"] = s.store.Count(context.Background())

		versions := map[string]uint64{}
		for _, sd := range []model.SortDirection{model.SortAsc, model.SortDesc} {
			for _, lang := range []model.Language{model.LangFI, model.LangSV, model.LangEN} {
				if v, ok := s.catalog.Version(sd, lang); ok {
					versions[fmt.Sprintf("%s:%s", sd, lang)] = v
				}
			}
		}
		stats["catalogVersions"] = versions
	}

	return stats
}
