package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postbridge/internal/core/posts"
)

// GetHandler handles single post lookups
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{
		service: service,
	}
}

// HandleGet handles GET /post/{id}
// Served from the local store, or fetched from the upstream and cached on a miss
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := posts.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
