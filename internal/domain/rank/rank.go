// Package rank merges scoring backend output with catalog entries into the
// ranked suggestion list returned to callers.
package rank

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tkorhonen/opprec/internal/domain/model"
	"github.com/tkorhonen/opprec/internal/domain/types"
	"github.com/tkorhonen/opprec/pkg/logger"
)

// Score is one scoring backend result as seen by the ranker. A negative
// Value is the "unknown" sentinel and is treated the same as no score.
type Score struct {
	ID    uuid.UUID
	Value float64
}

// Ranker merges catalog entries with scores. Safe for concurrent use.
type Ranker struct {
	log logger.Logger
}

// New creates a Ranker with configuration options.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		log: logger.Named("rank"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Rank produces exactly one suggestion per catalog entry, in score-descending
// order. Entries must already be in presentation (catalog) order; each
// suggestion's PresentationIndex records that position before sorting.
//
// Scores are deduplicated by id keeping the first occurrence. The catalog
// kind is authoritative; the backend's own kind hint is ignored. An entry
// with no usable score keeps a nil score and sorts after every scored entry.
// Score ids absent from the catalog are discarded.
func (r *Ranker) Rank(ctx context.Context, entries []model.CatalogEntry, scores []Score) []types.Suggestion {
	byID := make(map[uuid.UUID]float64, len(scores))
	for _, s := range scores {
		if _, ok := byID[s.ID]; ok {
			continue
		}
		byID[s.ID] = s.Value
	}

	suggestions := make([]types.Suggestion, 0, len(entries))
	for i, entry := range entries {
		s := types.Suggestion{
			ID:                entry.ID,
			Kind:              entry.Kind,
			PresentationIndex: i,
		}
		value, ok := byID[entry.ID]
		switch {
		case !ok:
			r.log.Warn(ctx, "catalog id not found in score results",
				logger.String("id", entry.ID.String()))
		case value < 0:
			// Sentinel from the backend: known id, unknown score.
		default:
			v := value
			s.Score = &v
		}
		delete(byID, entry.ID)
		suggestions = append(suggestions, s)
	}

	for id := range byID {
		r.log.Debug(ctx, "discarding score for unknown id",
			logger.String("id", id.String()))
	}

	// Stable keeps catalog order for equal and unset scores, so results are
	// deterministic across retries.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i].Score, suggestions[j].Score
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	return suggestions
}

// Unscored emits one suggestion per catalog entry in catalog order with no
// score attached. This is the "no signal" fallback; its shape is identical to
// a scored result, only the score is absent.
func (r *Ranker) Unscored(entries []model.CatalogEntry) []types.Suggestion {
	suggestions := make([]types.Suggestion, 0, len(entries))
	for i, entry := range entries {
		suggestions = append(suggestions, types.Suggestion{
			ID:                entry.ID,
			Kind:              entry.Kind,
			PresentationIndex: i,
		})
	}
	return suggestions
}
