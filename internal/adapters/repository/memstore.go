package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/tkorhonen/opprec/internal/domain/model"
)

// MemStore is an in-memory Store. It stands in for the external persistence
// collaborator in the composed binary and in tests. Safe for concurrent use;
// reads dominate, so a RWMutex guards the map.
type MemStore struct {
	mu   sync.RWMutex
	opps map[uuid.UUID]Opportunity
}

// NewMemStore creates an empty in-memory store with configuration options.
func NewMemStore(opts ...Option) (*MemStore, error) {
	s := &MemStore{
		opps: make(map[uuid.UUID]Opportunity),
	}

	// Apply all options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// UnionOpportunityTitles returns one row per active opportunity that carries
// a title in lang. Missing translations simply drop the opportunity from
// that language's view.
func (s *MemStore) UnionOpportunityTitles(_ context.Context, lang model.Language) ([]model.TitleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.TitleRow, 0, len(s.opps))
	for _, opp := range s.opps {
		if !opp.Active {
			continue
		}
		title, ok := opp.Titles[lang]
		if !ok || title == "" {
			continue
		}
		rows = append(rows, model.TitleRow{ID: opp.ID, Kind: opp.Kind, Title: title})
	}
	return rows, nil
}

// TrainingSkillDistributions returns the skills distribution of every active
// training opportunity.
func (s *MemStore) TrainingSkillDistributions(_ context.Context) ([]model.TrainingDistribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dists := make([]model.TrainingDistribution, 0)
	for _, opp := range s.opps {
		if !opp.Active || opp.Kind != model.KindTraining {
			continue
		}
		dists = append(dists, model.TrainingDistribution{ID: opp.ID, Dist: opp.Skills})
	}
	return dists, nil
}

// Put inserts or replaces an opportunity.
func (s *MemStore) Put(_ context.Context, opp Opportunity) error {
	if opp.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidOpp)
	}
	if opp.Kind != model.KindJob && opp.Kind != model.KindTraining {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOpp, opp.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opps[opp.ID] = opp
	return nil
}

// Delete removes an opportunity.
func (s *MemStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opps[id]; !ok {
		return ErrNotFound
	}
	delete(s.opps, id)
	return nil
}

// Count returns the number of stored opportunities.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.opps)
}

// loadSeedFile reads a JSON array of opportunities into the store.
func (s *MemStore) loadSeedFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var opps []Opportunity
	if err := json.Unmarshal(data, &opps); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	for _, opp := range opps {
		if opp.ID == uuid.Nil {
			return fmt.Errorf("%w: seed entry missing id", ErrInvalidOpp)
		}
		s.opps[opp.ID] = opp
	}
	return nil
}
