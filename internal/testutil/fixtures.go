package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/whisperbox/internal/app/system/authutil"
	"github.com/dalemusser/whisperbox/internal/app/system/normalize"
	"github.com/dalemusser/whisperbox/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateVerifiedUser creates a verified user accepting messages. The
// password is bcrypt-hashed so sign-in flows work against the fixture.
func (f *Fixtures) CreateVerifiedUser(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, email, password, true, true)
}

// CreatePendingUser creates an unverified registration.
func (f *Fixtures) CreatePendingUser(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, email, password, false, true)
}

// CreateClosedUser creates a verified user who is not accepting
// messages.
func (f *Fixtures) CreateClosedUser(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, email, password, true, false)
}

func (f *Fixtures) createUser(ctx context.Context, username, email, password string, verified, accepting bool) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:                  primitive.NewObjectID(),
		Username:            username,
		UsernameCI:          normalize.UsernameCI(username),
		Email:               normalize.Email(email),
		PasswordHash:        hash,
		IsVerified:          verified,
		IsAcceptingMessages: accepting,
		Messages:            []models.Message{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if !verified {
		user.VerifyCodeExpiry = now.Add(time.Hour)
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// AddMessage appends a message directly to the user's document,
// bypassing the acceptance check.
func (f *Fixtures) AddMessage(ctx context.Context, userID primitive.ObjectID, content string, createdAt time.Time) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Content:   content,
		CreatedAt: createdAt,
	}
	_, err := f.db.Collection("users").UpdateByID(ctx, userID,
		map[string]any{"$push": map[string]any{"messages": msg}})
	if err != nil {
		f.t.Fatalf("failed to add test message: %v", err)
	}
	return msg
}
