// Package routeguard decides, per page request, whether a visitor may
// stay or must be redirected based on their sign-in state.
//
// Guarding applies to the HTML pages only. API endpoints enforce their
// own auth via auth.RequireSignedIn and never redirect.
package routeguard

import (
	"net/http"
	"strings"

	"github.com/dalemusser/whisperbox/internal/app/system/auth"
)

// Class buckets a request path for the guard decision.
type Class int

const (
	// OtherRoute is everything the guard has no opinion about.
	OtherRoute Class = iota
	// AuthRoute is a page for visitors who are not signed in yet.
	AuthRoute
	// ProtectedRoute is a page that requires a session.
	ProtectedRoute
)

const (
	// SignInPath is where anonymous visitors land when they hit a
	// protected page.
	SignInPath = "/sign-in"
	// HomePath is where signed-in visitors land when they hit an auth
	// page.
	HomePath = "/"
)

// Classify buckets a path. Pure function of the path string, so the
// same path always lands in the same bucket.
func Classify(path string) Class {
	switch {
	case path == HomePath, path == SignInPath, path == "/sign-up":
		return AuthRoute
	case strings.HasPrefix(path, "/verify"):
		return AuthRoute
	case strings.HasPrefix(path, "/dashboard"):
		return ProtectedRoute
	default:
		return OtherRoute
	}
}

// Decide returns the redirect target for (class, signed-in), or "" when
// the request may proceed.
//
// Signed-in visitors are bounced off auth pages to the dashboard;
// anonymous visitors are bounced off protected pages to sign-in. The
// home page is treated as an auth page but stays reachable when
// anonymous.
func Decide(class Class, signedIn bool) string {
	switch {
	case class == AuthRoute && signedIn:
		return "/dashboard"
	case class == ProtectedRoute && !signedIn:
		return SignInPath
	default:
		return ""
	}
}

// Middleware applies Classify+Decide to page requests. It must run
// after auth.LoadSessionUser so the session state is in context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := auth.CurrentUser(r)
		if target := Decide(Classify(r.URL.Path), signedIn); target != "" {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
