package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/whisperbox/internal/app/system/auth"
	"github.com/dalemusser/whisperbox/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager(
		"0123456789abcdef0123456789abcdef", "wb-test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return m
}

func testUser() *models.User {
	return &models.User{
		ID:                  primitive.NewObjectID(),
		Username:            "Alice_01",
		IsVerified:          true,
		IsAcceptingMessages: false,
	}
}

func TestEncodeDecodeClaims_RoundTrip(t *testing.T) {
	u := testUser()

	got := auth.DecodeClaims(auth.EncodeClaims(u))

	if got.ID != u.ID.Hex() {
		t.Errorf("ID: got %q, want %q", got.ID, u.ID.Hex())
	}
	if got.Username != u.Username {
		t.Errorf("Username: got %q, want %q", got.Username, u.Username)
	}
	if got.IsVerified != u.IsVerified {
		t.Errorf("IsVerified: got %v, want %v", got.IsVerified, u.IsVerified)
	}
	if got.IsAcceptingMessages != u.IsAcceptingMessages {
		t.Errorf("IsAcceptingMessages: got %v, want %v", got.IsAcceptingMessages, u.IsAcceptingMessages)
	}
}

func TestIssueAndParseToken(t *testing.T) {
	m := testManager(t)
	u := testUser()

	signed, err := m.IssueToken(u)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := m.ParseToken(signed)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != u.ID.Hex() {
		t.Errorf("subject: got %q, want %q", claims.Subject, u.ID.Hex())
	}
	if claims.Username != u.Username {
		t.Errorf("username: got %q, want %q", claims.Username, u.Username)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Error("expected issued-at and expiry to be stamped")
	}
}

func TestParseToken_RejectsTampering(t *testing.T) {
	m := testManager(t)

	signed, err := m.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 JWT segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := m.ParseToken(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestParseToken_RejectsWrongKey(t *testing.T) {
	m := testManager(t)
	other, err := auth.NewSessionManager(
		"ffffffffffffffffffffffffffffffff", "wb-test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	signed, err := other.IssueToken(testUser())
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := m.ParseToken(signed); err == nil {
		t.Error("expected token signed with another key to be rejected")
	}
}

func TestNewSessionManager_RequiresKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "c", "", false, zap.NewNop()); err == nil {
		t.Error("expected empty session key to be rejected")
	}
}

func TestLoadSessionUser_InjectsUser(t *testing.T) {
	m := testManager(t)
	u := testUser()

	rec := httptest.NewRecorder()
	if err := m.IssueSession(rec, u); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	var got *auth.SessionUser
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected session user in context")
	}
	if got.Username != u.Username {
		t.Errorf("username: got %q, want %q", got.Username, u.Username)
	}
}

func TestLoadSessionUser_IgnoresGarbageCookie(t *testing.T) {
	m := testManager(t)

	var found bool
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wb-test-session", Value: "not-a-jwt"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Error("garbage cookie must not yield a session user")
	}
}

func TestRequireSignedIn(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("blocks anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		auth.RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-messages", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Errorf("expected JSON failure envelope, got %q", rec.Body.String())
		}
	})

	t.Run("passes signed-in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := auth.WithTestUser(
			httptest.NewRequest(http.MethodGet, "/api/get-messages", nil),
			&auth.SessionUser{ID: "x", Username: "alice"})
		auth.RequireSignedIn(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
		}
	})
}

func TestClearSession_ExpiresCookie(t *testing.T) {
	m := testManager(t)
	rec := httptest.NewRecorder()
	m.ClearSession(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("expected negative MaxAge, got %d", cookies[0].MaxAge)
	}
	if cookies[0].Value != "" {
		t.Errorf("expected empty value, got %q", cookies[0].Value)
	}
}
