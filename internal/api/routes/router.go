package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"Postbridge/internal/api/middleware"
	"Postbridge/internal/core/posts"
	"Postbridge/internal/core/users"
)

// NewRouter assembles the full HTTP API. rateLimiter may be nil.
func NewRouter(postService posts.Service, userService users.UserService, db Pinger, rateLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}

	RegisterPostRoutes(r, postService)
	RegisterUserRoutes(r, userService)
	RegisterHealthRoutes(r, db)

	return r
}
