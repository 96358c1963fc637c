package api

import (
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/textassist"
)

// AssistHandler exposes the writing helpers. Both endpoints always succeed
// once the request is well formed.
type AssistHandler struct {
	Assist *textassist.Assistant
}

type enhanceRequest struct {
	Text string `json:"text"`
}

type enhanceResponse struct {
	Text     string `json:"text"`
	Enhanced bool   `json:"enhanced"`
}

type categorizeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Enhance handles POST /api/assist/enhance.
func (h *AssistHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, http.StatusBadRequest, "text required")
		return
	}

	out := h.Assist.Enhance(r.Context(), req.Text)
	jsonResponse(w, http.StatusOK, enhanceResponse{Text: out, Enhanced: out != req.Text})
}

// Categorize handles POST /api/assist/categorize.
func (h *AssistHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		jsonError(w, http.StatusBadRequest, "title or description required")
		return
	}

	cat := h.Assist.Categorize(r.Context(), req.Title, req.Description)
	jsonResponse(w, http.StatusOK, map[string]string{"category": string(cat)})
}
