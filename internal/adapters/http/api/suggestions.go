// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tkorhonen/opprec/internal/adapters/inference"
	service "github.com/tkorhonen/opprec/internal/app"
	"github.com/tkorhonen/opprec/internal/domain/model"
)

// Request validation limits.
const (
	maxURIListLen = 1000
)

// suggestionRequest mirrors the request schema for POST /api/v1/suggestions.
type suggestionRequest struct {
	Skills         []string `json:"skills"`
	Interests      []string `json:"interests"`
	FreeText       string   `json:"freeText"`
	SkillWeight    *float64 `json:"skillWeight"`
	InterestWeight *float64 `json:"interestWeight"`
	EscoListWeight *float64 `json:"escoListWeight"`
	FreeTextWeight *float64 `json:"freeTextWeight"`
}

func (s suggestionRequest) validate(maxURIs int) error {
	if len(s.Skills) > maxURIs {
		return fmt.Errorf("too many skills: %d > %d", len(s.Skills), maxURIs)
	}
	if len(s.Interests) > maxURIs {
		return fmt.Errorf("too many interests: %d > %d", len(s.Interests), maxURIs)
	}
	for name, w := range map[string]*float64{
		"skillWeight":    s.SkillWeight,
		"interestWeight": s.InterestWeight,
		"escoListWeight": s.EscoListWeight,
		"freeTextWeight": s.FreeTextWeight,
	} {
		if w != nil && (*w < 0 || *w > 1) {
			return fmt.Errorf("%s out of range [0, 1]: %g", name, *w)
		}
	}
	return nil
}

// SuggestionsHandler handles suggestion requests.
type SuggestionsHandler struct {
	deps    Dependencies
	maxURIs int
}

// NewSuggestionsHandler creates a new suggestions handler.
func NewSuggestionsHandler(deps Dependencies) *SuggestionsHandler {
	return &SuggestionsHandler{deps: deps, maxURIs: maxURIListLen}
}

// HandlePostSuggestions handles POST /api/v1/suggestions requests. The sort
// query parameter picks the catalog view (asc by default) and the
// Content-Language header picks the language (fi by default).
func (h *SuggestionsHandler) HandlePostSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	sortDir, err := model.ParseSortDirection(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	lang, err := model.ParseLanguage(r.Header.Get("Content-Language"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("decoding body: %w", err))
		return
	}
	if err := req.validate(h.maxURIs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	suggestions, err := h.deps.Suggest(r.Context(), service.SuggestParams{
		Sort:           sortDir,
		Lang:           lang,
		Skills:         req.Skills,
		Interests:      req.Interests,
		FreeText:       req.FreeText,
		SkillWeight:    req.SkillWeight,
		InterestWeight: req.InterestWeight,
		EscoListWeight: req.EscoListWeight,
		FreeTextWeight: req.FreeTextWeight,
	})
	if err != nil {
		writeSuggestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// writeSuggestError maps engine failures onto HTTP semantics: overload is
// retryable, validation is the caller's fault, any other gateway failure is
// an upstream error.
func writeSuggestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inference.ErrOverloaded):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "overloaded", ErrOverloaded)
	case errors.Is(err, inference.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, inference.ErrInference):
		writeError(w, http.StatusBadGateway, "scoring_failed", ErrScoringFailed)
	default:
		writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
	}
}
