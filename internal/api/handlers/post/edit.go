package post

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postbridge/internal/core/posts"
)

// EditHandler handles partial post updates
type EditHandler struct {
	service posts.Service
}

// NewEditHandler creates a new edit handler
func NewEditHandler(service posts.Service) *EditHandler {
	return &EditHandler{
		service: service,
	}
}

// HandleEdit handles PUT|PATCH /edit/{id}
// Fields come from an optional JSON body {"title"?, "body"?}; the title and body
// query parameters are accepted for fields the body does not set.
func (h *EditHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := posts.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req posts.EditPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 1MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	query := r.URL.Query()
	if req.Title == nil && query.Has("title") {
		title := query.Get("title")
		req.Title = &title
	}
	if req.Body == nil && query.Has("body") {
		body := query.Get("body")
		req.Body = &body
	}

	post, err := h.service.EditPost(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
