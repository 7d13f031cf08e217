package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/dalemusser/whisperbox/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// DefaultSessionTTL bounds how long a signed token stays valid.
	DefaultSessionTTL = 24 * time.Hour
)

var (
	// ErrInvalidToken is returned when a session token fails signature or
	// expiry checks.
	ErrInvalidToken = errors.New("invalid session token")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Claims & session user                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Claims is the minimal projection of a user embedded in the session
// token: identity, verification flag, acceptance flag, handle. It never
// carries the password hash or verification code.
//
// Claims are a point-in-time snapshot taken at sign-in; a toggled
// acceptance flag is only as fresh as the last encode.
type Claims struct {
	jwt.RegisteredClaims
	Username            string `json:"username"`
	IsVerified          bool   `json:"is_verified"`
	IsAcceptingMessages bool   `json:"is_accepting_messages"`
}

// SessionUser is what we reconstruct from claims and inject into
// r.Context(). The four fields round-trip exactly through encode/decode.
type SessionUser struct {
	ID                  string
	Username            string
	IsVerified          bool
	IsAcceptingMessages bool
}

// EncodeClaims maps a verified user record onto session claims.
func EncodeClaims(u *models.User) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID.Hex(),
		},
		Username:            u.Username,
		IsVerified:          u.IsVerified,
		IsAcceptingMessages: u.IsAcceptingMessages,
	}
}

// DecodeClaims reconstructs the session-visible user view from claims.
// No database access: sessions are stateless.
func DecodeClaims(c Claims) *SessionUser {
	return &SessionUser{
		ID:                  c.Subject,
		Username:            c.Username,
		IsVerified:          c.IsVerified,
		IsAcceptingMessages: c.IsAcceptingMessages,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a session user directly, bypassing the cookie.
// For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager signs and verifies the stateless session cookie.
type SessionManager struct {
	secret     []byte
	cookieName string
	domain     string
	secure     bool
	ttl        time.Duration
	log        *zap.Logger
}

// NewSessionManager builds a manager from the configured signing key and
// cookie settings. The `secure` flag controls the Secure cookie attribute;
// use false for local dev over http://localhost.
func NewSessionManager(sessionKey, cookieName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if cookieName == "" {
		cookieName = "whisperbox-session"
	}

	return &SessionManager{
		secret:     []byte(sessionKey),
		cookieName: cookieName,
		domain:     domain,
		secure:     secure,
		ttl:        DefaultSessionTTL,
		log:        logger,
	}, nil
}

// IssueToken signs a fresh token for the user. Expiry is stamped here so
// every sign-in refreshes the session window.
func (m *SessionManager) IssueToken(u *models.User) (string, error) {
	claims := EncodeClaims(u)
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry, returning the claims.
func (m *SessionManager) ParseToken(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// IssueSession signs a token for the user and sets the session cookie.
func (m *SessionManager) IssueSession(w http.ResponseWriter, u *models.User) error {
	signed, err := m.IssueToken(u)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Domain:   m.domain,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the session cookie.
func (m *SessionManager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Domain:   m.domain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the user into context if a valid session
// cookie is present. An invalid or expired token is treated as signed
// out, not as an error.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.ParseToken(cookie.Value)
		if err != nil {
			m.log.Debug("session token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, DecodeClaims(claims)))
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). API callers get a plain 401 JSON envelope.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
	})
}
