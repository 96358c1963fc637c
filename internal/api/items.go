package api

import (
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/workflow"
)

// maxPhotoUpload is the largest photo accepted. Requests may exceed it by
// multipartOverhead to leave room for the form framing.
const (
	maxPhotoUpload    = imaging.DefaultMaxBytes
	multipartOverhead = 1 << 20
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Engine *workflow.Engine
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := workflow.ParseFilter(q.Get("category"), q.Get("type"), q.Get("status"), q.Get("q"))
	if err != nil {
		workflowError(w, err, "list items")
		return
	}

	items, err := h.Engine.List(r.Context(), GetIdentity(r.Context()), f)
	if err != nil {
		workflowError(w, err, "list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft model.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.Submit(r.Context(), GetIdentity(r.Context()), draft)
	if err != nil {
		workflowError(w, err, "create item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.Get(r.Context(), GetIdentity(r.Context()), r.PathValue("id"))
	if err != nil {
		workflowError(w, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Delete(r.Context(), GetIdentity(r.Context()), r.PathValue("id")); err != nil {
		workflowError(w, err, "delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Approve handles POST /api/items/{id}/approve.
func (h *ItemsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.Approve(r.Context(), GetIdentity(r.Context()), r.PathValue("id"))
	if err != nil {
		workflowError(w, err, "approve item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// MarkReturned handles POST /api/items/{id}/returned.
func (h *ItemsHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.MarkReturned(r.Context(), GetIdentity(r.Context()), r.PathValue("id"))
	if err != nil {
		workflowError(w, err, "mark item returned")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUpload+multipartOverhead)

	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	// The content is sniffed during processing; the part's Content-Type is ignored.
	item, err := h.Engine.AttachImage(r.Context(), GetIdentity(r.Context()), r.PathValue("id"), file)
	if err != nil {
		workflowError(w, err, "save image")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.Engine.Image(r.Context(), GetIdentity(r.Context()), r.PathValue("id"))
	if err != nil {
		workflowError(w, err, "get image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// MyReports handles GET /api/me/reports.
func (h *ItemsHandler) MyReports(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.MyReports(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		workflowError(w, err, "list reports")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Categories handles GET /api/categories.
func Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories)
}
