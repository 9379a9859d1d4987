package post

import (
	"log"
	"net/http"

	"Postbridge/internal/api/handlers"
	"Postbridge/internal/core/posts"
)

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	handlers.WriteJSON(w, statusCode, v)
}

func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	handlers.WriteError(w, statusCode, errorType, message)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := posts.ErrorKind(err)
	switch kind {
	case posts.KindInvalidArgument:
		log.Printf("[HTTP] %s %s: rejected: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadRequest, kind.String(), err.Error())

	case posts.KindNotFound, posts.KindUpstreamNotFound:
		log.Printf("[HTTP] %s %s: %s: %v", r.Method, r.URL.Path, kind, err)
		writeError(w, http.StatusNotFound, kind.String(), err.Error())

	default:
		// Don't leak internal error details to clients
		log.Printf("[HTTP] Unexpected error in %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "Internal Server Error!")
	}
}
