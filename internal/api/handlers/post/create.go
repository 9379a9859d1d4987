package post

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Postbridge/internal/core/posts"
)

// maxBodyBytes caps request bodies for create and edit
const maxBodyBytes = 1 * 1024 * 1024

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /create
// Request body: {"userId": 1, "title": "...", "body": "..."}
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req posts.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 1MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		// A user the upstream does not know is the caller's mistake here
		if posts.IsUserNotFound(err) {
			log.Printf("[HTTP] POST /create: %v", err)
			writeError(w, http.StatusBadRequest, posts.KindUpstreamNotFound.String(), err.Error())
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
