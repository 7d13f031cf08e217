// internal/app/features/pages/routes.go
package pages

import (
	"github.com/dalemusser/whisperbox/internal/app/system/routeguard"
	"github.com/go-chi/chi/v5"
)

// Routes returns the page router. The route guard runs on every page so
// signed-in visitors bounce off the auth pages and anonymous visitors
// bounce off the dashboard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(routeguard.Middleware)

	r.Get("/", h.ServeHome)
	r.Get("/sign-in", h.ServeSignIn)
	r.Get("/sign-up", h.ServeSignUp)
	r.Get("/verify/{username}", h.ServeVerify)
	r.Get("/dashboard", h.ServeDashboard)
	r.Get("/u/{username}", h.ServeProfile)

	return r
}
