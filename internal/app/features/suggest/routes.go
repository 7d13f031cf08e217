// internal/app/features/suggest/routes.go
package suggest

import "github.com/go-chi/chi/v5"

// Register attaches the suggestion endpoint to the API router.
func Register(r chi.Router, h *Handler) {
	r.Post("/suggest-messages", h.HandleSuggest)
}
