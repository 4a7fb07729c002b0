// Package repository defines the opportunity store interface and errors.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tkorhonen/opprec/internal/domain/model"
)

// Opportunity is one stored job opening or training program, with its
// localized titles and, for trainings, the recorded skills distribution.
type Opportunity struct {
	ID     uuid.UUID                 `json:"id"`
	Kind   model.Kind                `json:"kind"`
	Titles map[model.Language]string `json:"titles"`
	Skills model.Distribution        `json:"skills,omitempty"`
	Active bool                      `json:"active"`
}

// Store provides read access to opportunities for the catalog and path step
// scorer, plus the write surface used to seed and maintain the data set.
type Store interface {
	// UnionOpportunityTitles returns one row per active opportunity that has
	// a title in lang, across both kinds. Row order is unspecified; callers
	// sort.
	UnionOpportunityTitles(ctx context.Context, lang model.Language) ([]model.TitleRow, error)

	// TrainingSkillDistributions returns the skills distribution of every
	// active training opportunity.
	TrainingSkillDistributions(ctx context.Context) ([]model.TrainingDistribution, error)

	// Put inserts or replaces an opportunity.
	Put(ctx context.Context, opp Opportunity) error

	// Delete removes an opportunity. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of stored opportunities.
	Count(ctx context.Context) int
}
