// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// pathStepRequest mirrors the request schema for POST /api/v1/path-steps.
type pathStepRequest struct {
	MissingSkills []string `json:"missingSkills"`
}

func (p pathStepRequest) validate(maxURIs int) error {
	if len(p.MissingSkills) > maxURIs {
		return fmt.Errorf("too many missing skills: %d > %d", len(p.MissingSkills), maxURIs)
	}
	return nil
}

// PathStepsHandler handles path step requests.
type PathStepsHandler struct {
	deps    Dependencies
	maxURIs int
}

// NewPathStepsHandler creates a new path steps handler.
func NewPathStepsHandler(deps Dependencies) *PathStepsHandler {
	return &PathStepsHandler{deps: deps, maxURIs: maxURIListLen}
}

// HandlePostPathSteps handles POST /api/v1/path-steps requests.
func (h *PathStepsHandler) HandlePostPathSteps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req pathStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("decoding body: %w", err))
		return
	}
	if err := req.validate(h.maxURIs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	steps, err := h.deps.PathSteps(r.Context(), req.MissingSkills)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
		return
	}

	writeJSON(w, http.StatusOK, steps)
}
