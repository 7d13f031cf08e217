package signin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/apiresp"
	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/dalemusser/whisperbox/internal/app/system/authutil"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"github.com/dalemusser/whisperbox/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// HandleSignIn handles POST /api/sign-in.
//
// The identifier may be a username or an email. Unknown identifier and
// wrong password collapse to the same opaque 401, so the endpoint
// confirms nothing about which accounts exist. The unverified check
// runs before the password check: a correct password on an unverified
// account still gets the 403, never a session.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req schemas.SignInRequest
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

	u, err := h.Users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apiresp.Fail(w, http.StatusUnauthorized, "Incorrect identifier or password")
			return
		}
		apiresp.ServerError(w, h.Log, "sign-in: lookup", err)
		return
	}

	if !u.IsVerified {
		apiresp.Fail(w, http.StatusForbidden, "Please verify your account before signing in")
		return
	}

	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		apiresp.Fail(w, http.StatusUnauthorized, "Incorrect identifier or password")
		return
	}

	if err := h.SessionMgr.IssueSession(w, u); err != nil {
		apiresp.ServerError(w, h.Log, "sign-in: issue session", err)
		return
	}

	h.Log.Info("user signed in", zap.String("username", u.Username))
	apiresp.OKWith(w, http.StatusOK, "Signed in", map[string]any{
		"username":            u.Username,
		"isAcceptingMessages": u.IsAcceptingMessages,
	})
}

// HandleSignOut handles POST /api/sign-out. Clearing the cookie is all
// there is; the token itself simply ages out.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.SessionMgr.ClearSession(w)
	apiresp.OK(w, http.StatusOK, "Signed out")
}
