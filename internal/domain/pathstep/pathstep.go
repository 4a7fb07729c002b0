// Package pathstep ranks training opportunities by how well they cover a set
// of missing skills.
package pathstep

import (
	"context"
	"fmt"
	"sort"

	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/internal/domain/types"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Repository yields the training opportunities and their skill distributions.
type Repository interface {
	TrainingSkillDistributions(ctx context.Context) ([]model.TrainingDistribution, error)
}

// Scorer computes missing-skill match ratios against training opportunities.
// Safe for concurrent use.
type Scorer struct {
	repo Repository
}

// New creates a Scorer reading distributions from repo.
func New(repo Repository) *Scorer {
	return &Scorer{repo: repo}
}

// Score ranks training opportunities by the share of their recorded skills
// that appear in the missing set. The denominator is the distribution's total
// recorded skill count, so opportunities with many skill slots are penalized
// proportionally. Opportunities with zero recorded skills are excluded.
//
// An empty missing set returns an empty result without touching the
// repository.
func (s *Scorer) Score(ctx context.Context, missing map[string]struct{}) ([]types.Step, error) {
	if len(missing) == 0 {
		return []types.Step{}, nil
	}

	dists, err := s.repo.TrainingSkillDistributions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading training skill distributions: %w", err)
	}
	metrics.RecordPathStepQuery()

	steps := make([]types.Step, 0, len(dists))
	for _, d := range dists {
		if d.Dist.TotalCount == 0 {
			// Ratio is undefined without recorded skills.
			continue
		}
		matches := 0
		for _, v := range d.Dist.Values {
			if _, ok := missing[v.Value]; ok {
				matches++
			}
		}
		steps = append(steps, types.Step{
			ID:              d.ID,
			Kind:            model.KindTraining,
			Score:           float64(matches) / float64(d.Dist.TotalCount),
			SkillMatchCount: matches,
		})
	}

	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Score != steps[j].Score {
			return steps[i].Score > steps[j].Score
		}
		if steps[i].SkillMatchCount != steps[j].SkillMatchCount {
			return steps[i].SkillMatchCount > steps[j].SkillMatchCount
		}
		return steps[i].ID.String() < steps[j].ID.String()
	})

	return steps, nil
}
