package messages

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/apiresp"
	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/dalemusser/whisperbox/internal/app/system/htmlsanitize"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"github.com/dalemusser/whisperbox/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// sessionObjectID resolves the signed-in user's ObjectID from context.
// The guard middleware has already run, so a miss here is a programming
// error surfaced as 401 rather than a panic.
func sessionObjectID(r *http.Request) (primitive.ObjectID, *auth.SessionUser, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, nil, false
	}
	return id, su, true
}

// HandleGetAcceptance handles GET /api/accept-messages.
//
// Reads the flag from the database, not the session claims, so a toggle
// from another device is visible immediately.
func (h *Handler) HandleGetAcceptance(w http.ResponseWriter, r *http.Request) {
	id, _, ok := sessionObjectID(r)
	if !ok {
		apiresp.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apiresp.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		apiresp.ServerError(w, h.Log, "accept-messages: load user", err)
		return
	}

	apiresp.OKWith(w, http.StatusOK, "", map[string]any{
		"isAcceptingMessages": u.IsAcceptingMessages,
	})
}

// HandleSetAcceptance handles POST /api/accept-messages.
func (h *Handler) HandleSetAcceptance(w http.ResponseWriter, r *http.Request) {
	id, su, ok := sessionObjectID(r)
	if !ok {
		apiresp.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req schemas.AcceptMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetAcceptingMessages(ctx, id, *req.AcceptMessages); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apiresp.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		apiresp.ServerError(w, h.Log, "accept-messages: update", err)
		return
	}

	h.Log.Info("acceptance toggled",
		zap.String("username", su.Username),
		zap.Bool("accepting", *req.AcceptMessages))

	apiresp.OKWith(w, http.StatusOK, "Message acceptance updated", map[string]any{
		"isAcceptingMessages": *req.AcceptMessages,
	})
}

// HandleGetMessages handles GET /api/get-messages, newest first. An
// empty inbox is a 200 with an empty list, not an error.
func (h *Handler) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	id, _, ok := sessionObjectID(r)
	if !ok {
		apiresp.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msgs, err := h.Users.ListMessages(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apiresp.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		apiresp.ServerError(w, h.Log, "get-messages", err)
		return
	}

	apiresp.OKWith(w, http.StatusOK, "", map[string]any{
		"messages": msgs,
	})
}

// HandleDeleteMessage handles DELETE /api/delete-message/{id}. A miss
// is a 404 the client may treat as a no-op and retry freely.
func (h *Handler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, _, ok := sessionObjectID(r)
	if !ok {
		apiresp.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	messageID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Fail(w, http.StatusBadRequest, "Invalid message id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.DeleteMessage(ctx, id, messageID); err != nil {
		if errors.Is(err, userstore.ErrMessageNotFound) {
			apiresp.Fail(w, http.StatusNotFound, "Message not found or already deleted")
			return
		}
		apiresp.ServerError(w, h.Log, "delete-message", err)
		return
	}

	apiresp.OK(w, http.StatusOK, "Message deleted")
}

// HandleSendMessage handles POST /api/send-message. No session: the
// sender stays anonymous and nothing about them is stored.
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req schemas.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	content := htmlsanitize.StripTags(req.Content)
	if utf8.RuneCountInString(content) < schemas.ContentMinLength {
		apiresp.Fail(w, http.StatusBadRequest, "Message is too short after removing markup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Users.AppendMessage(ctx, req.Username, content); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			apiresp.Fail(w, http.StatusNotFound, "User not found")
		case errors.Is(err, userstore.ErrNotAccepting):
			apiresp.Fail(w, http.StatusForbidden, "User is not accepting messages")
		default:
			apiresp.ServerError(w, h.Log, "send-message", err)
		}
		return
	}

	apiresp.OK(w, http.StatusOK, "Message sent")
}
