// Package types contains common types used across the application
package types

import (
	"github.com/google/uuid"

	"github.com/tkorhonen/opprec/internal/domain/model"
)

// Suggestion is one ranked opportunity returned to a caller. Score is nil
// when the scoring backend produced no signal for the opportunity (or when
// scoring was skipped entirely).
type Suggestion struct {
	ID                uuid.UUID  `json:"id"`
	Kind              model.Kind `json:"kind"`
	Score             *float64   `json:"score"`
	PresentationIndex int        `json:"presentationIndex"`
}

// Step is one ranked training opportunity suggested as the next step of a
// plan, with its missing-skill match ratio.
type Step struct {
	ID              uuid.UUID  `json:"id"`
	Kind            model.Kind `json:"kind"`
	Score           float64    `json:"score"`
	SkillMatchCount int        `json:"skillMatchCount"`
}
