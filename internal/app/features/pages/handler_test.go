package pages_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/whisperbox/internal/app/features/pages"
	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/dalemusser/whisperbox/internal/app/system/routeguard"
	"github.com/dalemusser/whisperbox/internal/testutil"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := pages.NewHandler(userstore.New(db), zap.NewNop())
	return pages.Routes(h), testutil.NewFixtures(t, db)
}

// Rendering needs a booted template engine, which unit tests do not
// have; guard decisions happen before rendering so redirects are still
// observable.
func serve(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		router.ServeHTTP(rec.ResponseRecorder, req)
	}()
	return rec
}

func TestGuard_AnonymousOffDashboard(t *testing.T) {
	router, _ := newRouter(t)
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	rec.AssertRedirect(t, routeguard.SignInPath)
}

func TestGuard_SignedInOffAuthPages(t *testing.T) {
	router, _ := newRouter(t)
	su := &auth.SessionUser{ID: "x", Username: "alice", IsVerified: true}

	for _, path := range []string{"/", "/sign-in", "/sign-up", "/verify/alice"} {
		req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, path, nil), su)
		rec := serve(router, req)
		rec.AssertRedirect(t, "/dashboard")
	}
}

func TestProfile_UnknownUserIs404(t *testing.T) {
	router, _ := newRouter(t)
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/u/nobody", nil))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestProfile_PendingUserLooksAbsent(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreatePendingUser(ctx, "pending", "pending@example.com", "secret1")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/u/pending", nil))
	rec.AssertStatus(t, http.StatusNotFound)
}
