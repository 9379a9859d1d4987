package user

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Postbridge/internal/api/handlers"
	"Postbridge/internal/core/users"
)

// GetHandler handles local user lookups
type GetHandler struct {
	userService users.UserService
}

// NewGetHandler creates a new user lookup handler
func NewGetHandler(userService users.UserService) *GetHandler {
	return &GetHandler{
		userService: userService,
	}
}

// HandleGet handles GET /user/{id}
// Only users in the local store are returned; the upstream is never consulted.
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidArgument", "Invalid id="+raw+", id must be positive integer")
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidUserID):
			handlers.WriteError(w, http.StatusBadRequest, "InvalidArgument", err.Error())
		case errors.Is(err, users.ErrUserNotFound):
			handlers.WriteError(w, http.StatusNotFound, "NotFound", "User with id="+raw+" not found")
		default:
			log.Printf("[HTTP] GetUser id=%d failed: %v", id, err)
			handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Internal Server Error!")
		}
		return
	}

	handlers.WriteJSON(w, http.StatusOK, user)
}
