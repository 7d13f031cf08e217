package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/apiresp"
	"github.com/dalemusser/whisperbox/internal/app/system/mailer"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"github.com/dalemusser/whisperbox/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Mailer   mailer.Mailer
	Log      *zap.Logger
	BaseURL  string // Base URL for magic links (e.g., "https://whisperbox.app")
	SiteName string
}

// HandleSignUp handles POST /api/sign-up.
//
// A fresh registration starts unverified with a 6-digit code emailed to
// the address. A pending registration on the same email is overwritten
// with new credentials and a new code; a verified user on the username
// or email is a 400.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req schemas.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reg, err := h.Users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicate) {
			apiresp.Fail(w, http.StatusBadRequest, "Username or email is already taken")
			return
		}
		apiresp.ServerError(w, h.Log, "sign-up: register", err)
		return
	}

	email := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  h.SiteName,
		Username:  reg.User.Username,
		Code:      reg.Code,
		MagicLink: fmt.Sprintf("%s/verify/%s?token=%s", h.BaseURL, reg.User.Username, reg.Token),
		ExpiresIn: "1 hour",
	})
	email.To = reg.User.Email

	if err := h.Mailer.Send(ctx, email); err != nil {
		apiresp.ServerError(w, h.Log, "sign-up: send verification email", err)
		return
	}

	h.Log.Info("user registered",
		zap.String("username", reg.User.Username),
		zap.String("email", reg.User.Email))

	apiresp.OK(w, http.StatusCreated, "User registered. Please verify your email")
}

// HandleCheckUsername handles GET /api/check-username?username=.
//
// Available means well-formed and not held by any verified user. A
// pending (unverified) registration does not reserve the name.
func (h *Handler) HandleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := query.Get(r, "username")
	if !schemas.ValidUsername(username) {
		apiresp.Fail(w, http.StatusBadRequest, "Invalid username")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	taken, err := h.Users.VerifiedUsernameExists(ctx, username)
	if err != nil {
		apiresp.ServerError(w, h.Log, "check-username", err)
		return
	}
	if taken {
		apiresp.Fail(w, http.StatusBadRequest, "Username is already taken")
		return
	}
	apiresp.OK(w, http.StatusOK, "Username is available")
}

// HandleVerifyCode handles POST /api/verify-code.
func (h *Handler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req schemas.VerifyCodeRequest
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

	u, err := h.Users.VerifyCode(ctx, req.Username, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			apiresp.Fail(w, http.StatusNotFound, "User not found")
		case errors.Is(err, userstore.ErrAlreadyVerified):
			apiresp.OK(w, http.StatusOK, "Account is already verified")
		case errors.Is(err, userstore.ErrCodeExpired):
			apiresp.Fail(w, http.StatusBadRequest, "Verification code has expired. Please sign up again to get a new code")
		case errors.Is(err, userstore.ErrCodeInvalid):
			apiresp.Fail(w, http.StatusBadRequest, "Incorrect verification code")
		case errors.Is(err, userstore.ErrDuplicate):
			apiresp.Fail(w, http.StatusBadRequest, "Username or email was claimed while this code was pending")
		default:
			apiresp.ServerError(w, h.Log, "verify-code", err)
		}
		return
	}

	h.Log.Info("account verified", zap.String("username", u.Username))
	apiresp.OK(w, http.StatusOK, "Account verified successfully")
}

// HandleVerifyToken handles GET /api/verify-token?token=, the magic
// link from the verification email.
func (h *Handler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")
	if token == "" {
		apiresp.Fail(w, http.StatusBadRequest, "Missing token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.VerifyToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			apiresp.Fail(w, http.StatusNotFound, "Invalid or already used verification link")
		case errors.Is(err, userstore.ErrCodeExpired):
			apiresp.Fail(w, http.StatusBadRequest, "Verification link has expired. Please sign up again")
		default:
			apiresp.ServerError(w, h.Log, "verify-token", err)
		}
		return
	}

	h.Log.Info("account verified via magic link", zap.String("username", u.Username))
	apiresp.OK(w, http.StatusOK, "Account verified successfully")
}
