package pages

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"github.com/dalemusser/whisperbox/internal/app/system/timeouts"
	"github.com/dalemusser/whisperbox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the HTML pages. The route guard middleware has already
// decided whether the visitor may be here.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Welcome"),
	}
	templates.Render(w, r, "home", data)
}

func (h *Handler) ServeSignIn(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Sign In"),
	}
	templates.Render(w, r, "sign-in", data)
}

func (h *Handler) ServeSignUp(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Sign Up"),
	}
	templates.Render(w, r, "sign-up", data)
}

// ServeVerify renders the code-entry page for a pending registration.
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	data := struct {
		viewdata.BaseVM
		VerifyUsername string
	}{
		BaseVM:         viewdata.NewBaseVM(r, "Verify Account"),
		VerifyUsername: username,
	}
	templates.Render(w, r, "verify", data)
}

// ServeDashboard renders the inbox. Messages load client-side from
// /api/get-messages, so the page itself only needs the session user.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard"),
	}
	templates.Render(w, r, "dashboard", data)
}

// ServeProfile renders the public send-a-message page at /u/{username}.
// An unknown or malformed name gets the not-found page rather than a
// hint about which accounts exist being embedded in an error code.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !schemas.ValidUsername(username) {
		h.serveNotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.serveNotFound(w, r)
			return
		}
		h.Log.Error("profile page: load user", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !u.IsVerified {
		h.serveNotFound(w, r)
		return
	}

	data := struct {
		viewdata.BaseVM
		ProfileUsername string
		Accepting       bool
	}{
		BaseVM:          viewdata.NewBaseVM(r, "Send a message to @"+u.Username),
		ProfileUsername: u.Username,
		Accepting:       u.IsAcceptingMessages,
	}
	templates.Render(w, r, "profile", data)
}

func (h *Handler) serveNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Not Found"),
	}
	templates.Render(w, r, "notfound", data)
}
