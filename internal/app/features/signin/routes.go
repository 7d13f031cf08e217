// internal/app/features/signin/routes.go
package signin

import "github.com/go-chi/chi/v5"

// Register attaches the session endpoints to the API router.
func Register(r chi.Router, h *Handler) {
	r.Post("/sign-in", h.HandleSignIn)
	r.Post("/sign-out", h.HandleSignOut)
}
