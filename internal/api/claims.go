package api

import (
	"net/http"

	"github.com/erazemk/lostfound/internal/workflow"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	Engine *workflow.Engine
}

// Create handles POST /api/items/{id}/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workflow.ClaimInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.SubmitClaim(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), req)
	if err != nil {
		workflowError(w, err, "submit claim")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Approve handles POST /api/items/{id}/claims/{claimId}/approve.
func (h *ClaimsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.ApproveClaim(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), r.PathValue("claimId"))
	if err != nil {
		workflowError(w, err, "approve claim")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Reject handles POST /api/items/{id}/claims/{claimId}/reject.
func (h *ClaimsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.RejectClaim(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), r.PathValue("claimId"))
	if err != nil {
		workflowError(w, err, "reject claim")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Mine handles GET /api/me/claims.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claimed, err := h.Engine.MyClaims(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		workflowError(w, err, "list claims")
		return
	}
	jsonResponse(w, http.StatusOK, claimed)
}
