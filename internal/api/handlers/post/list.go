package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postbridge/internal/core/posts"
)

// ListHandler handles listing the posts of a user
type ListHandler struct {
	service posts.Service
}

// NewListHandler creates a new list handler
func NewListHandler(service posts.Service) *ListHandler {
	return &ListHandler{
		service: service,
	}
}

// HandleList handles GET /posts/{userId}
// Returns 200 with an empty array when the user has no local posts
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := posts.ParseID("userId", chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	list, err := h.service.GetPosts(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}
