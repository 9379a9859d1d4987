package routes

import (
	"Postbridge/internal/api/handlers/user"
	"Postbridge/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterUserRoutes registers the read-only user endpoint
func RegisterUserRoutes(r chi.Router, service users.UserService) {
	getHandler := user.NewGetHandler(service)

	r.Get("/user/{id}", getHandler.HandleGet)
}
