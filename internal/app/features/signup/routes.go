// internal/app/features/signup/routes.go
package signup

import "github.com/go-chi/chi/v5"

// Register attaches the registration endpoints to the API router.
func Register(r chi.Router, h *Handler) {
	r.Post("/sign-up", h.HandleSignUp)
	r.Get("/check-username", h.HandleCheckUsername)
	r.Post("/verify-code", h.HandleVerifyCode)
	r.Get("/verify-token", h.HandleVerifyToken)
}
