// Package inference calls the opportunity scoring backend. Two
// implementations share one request/response shape so the merge logic
// upstream stays backend-agnostic: a plain REST backend and a managed
// compute endpoint with provider error classification.
package inference

import (
	"context"

	"github.com/google/uuid"
)

// Request is the scoring backend request. Weights tune the relative
// contribution of each signal; the backend owns their interpretation.
type Request struct {
	SkillURIs      []string `json:"skillUris"`
	InterestURIs   []string `json:"interestUris,omitempty"`
	FreeText       string   `json:"freeText,omitempty"`
	SkillWeight    float64  `json:"skillWeight"`
	InterestWeight float64  `json:"interestWeight"`
	EscoListWeight float64  `json:"escoListWeight"`
	FreeTextWeight float64  `json:"freeTextWeight"`
}

// Score is one backend result row. Value < 0 is the "unknown" sentinel.
// TypeHint is the backend's own idea of the opportunity kind; the catalog
// stays authoritative and callers may ignore it.
type Score struct {
	ID       uuid.UUID `json:"id"`
	Value    float64   `json:"score"`
	TypeHint string    `json:"type,omitempty"`
}

// Gateway scores a request against a named endpoint. Implementations mutate
// no local state beyond the network call and propagate ctx cancellation into
// the request.
type Gateway interface {
	Infer(ctx context.Context, endpoint string, req Request) ([]Score, error)
}
