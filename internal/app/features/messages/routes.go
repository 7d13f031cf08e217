// internal/app/features/messages/routes.go
package messages

import (
	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Register attaches the message endpoints to the API router. Send is
// anonymous; everything else requires a session.
func Register(r chi.Router, h *Handler) {
	r.Post("/send-message", h.HandleSendMessage)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/accept-messages", h.HandleGetAcceptance)
		r.Post("/accept-messages", h.HandleSetAcceptance)
		r.Get("/get-messages", h.HandleGetMessages)
		r.Delete("/delete-message/{id}", h.HandleDeleteMessage)
	})
}
