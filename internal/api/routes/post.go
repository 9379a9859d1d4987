package routes

import (
	"Postbridge/internal/api/handlers/post"
	"Postbridge/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers the post endpoints on the router
func RegisterPostRoutes(r chi.Router, service posts.Service) {
	// Initialize handlers
	getHandler := post.NewGetHandler(service)
	listHandler := post.NewListHandler(service)
	createHandler := post.NewCreateHandler(service)
	editHandler := post.NewEditHandler(service)
	deleteHandler := post.NewDeleteHandler(service)

	// Reads fall back to the upstream on a local miss (single post only)
	r.Get("/post/{id}", getHandler.HandleGet)
	r.Get("/posts/{userId}", listHandler.HandleList)

	r.Post("/create", createHandler.HandleCreate)

	// Both verbs apply a partial update
	r.Put("/edit/{id}", editHandler.HandleEdit)
	r.Patch("/edit/{id}", editHandler.HandleEdit)

	r.Delete("/remove/{id}", deleteHandler.HandleDelete)
}
