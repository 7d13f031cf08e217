package messages_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/whisperbox/internal/app/features/messages"
	userstore "github.com/dalemusser/whisperbox/internal/app/store/users"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"github.com/dalemusser/whisperbox/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*messages.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := &messages.Handler{
		Users: userstore.New(db),
		Log:   zap.NewNop(),
	}
	return h, testutil.NewFixtures(t, db)
}

func TestHandleGetAcceptance_ReadsDatabaseNotClaims(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVerifiedUser(ctx, "alice", "alice@example.com", "secret1")

	// Flip the flag in the database after the "session" was issued.
	if err := h.Users.SetAcceptingMessages(ctx, u.ID, false); err != nil {
		t.Fatalf("SetAcceptingMessages failed: %v", err)
	}

	rec := testutil.NewRecorder()
	h.HandleGetAcceptance(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/accept-messages", u))
	rec.AssertStatus(t, http.StatusOK)

	got := rec.DecodeBody(t)
	if got["isAcceptingMessages"] != false {
		t.Errorf("expected database value false, got %v", got["isAcceptingMessages"])
	}
}

func TestHandleSetAcceptance(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVerifiedUser(ctx, "alice", "alice@example.com", "secret1")

	f := false
	rec := testutil.NewRecorder()
	h.HandleSetAcceptance(rec.ResponseRecorder, testutil.NewAuthenticatedJSONRequest(
		http.MethodPost, "/api/accept-messages",
		schemas.AcceptMessagesRequest{AcceptMessages: &f}, u))
	rec.AssertStatus(t, http.StatusOK)

	got, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.IsAcceptingMessages {
		t.Error("expected acceptance off in database")
	}

	t.Run("missing flag is rejected", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.HandleSetAcceptance(rec.ResponseRecorder, testutil.NewAuthenticatedJSONRequest(
			http.MethodPost, "/api/accept-messages",
			schemas.AcceptMessagesRequest{}, u))
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestHandleGetMessages(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVerifiedUser(ctx, "alice", "alice@example.com", "secret1")
	base := time.Now().Add(-time.Hour)
	fx.AddMessage(ctx, u.ID, "first", base)
	fx.AddMessage(ctx, u.ID, "second", base.Add(time.Minute))

	t.Run("newest first", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.HandleGetMessages(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/get-messages", u))
		rec.AssertStatus(t, http.StatusOK)

		got := rec.DecodeBody(t)
		msgs, ok := got["messages"].([]any)
		if !ok || len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %v", got["messages"])
		}
		first := msgs[0].(map[string]any)
		if first["content"] != "second" {
			t.Errorf("expected newest message first, got %v", first["content"])
		}
	})

	t.Run("empty inbox is 200", func(t *testing.T) {
		empty := fx.CreateVerifiedUser(ctx, "bob", "bob@example.com", "secret1")
		rec := testutil.NewRecorder()
		h.HandleGetMessages(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/get-messages", empty))
		rec.AssertStatus(t, http.StatusOK)

		got := rec.DecodeBody(t)
		msgs, ok := got["messages"].([]any)
		if !ok {
			t.Fatalf("expected messages array, got %v", got["messages"])
		}
		if len(msgs) != 0 {
			t.Errorf("expected empty list, got %d", len(msgs))
		}
	})

	t.Run("absent user is 404", func(t *testing.T) {
		ghost := u
		ghost.ID = primitive.NewObjectID()
		rec := testutil.NewRecorder()
		h.HandleGetMessages(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/get-messages", ghost))
		rec.AssertStatus(t, http.StatusNotFound)
	})
}

func TestHandleDeleteMessage(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVerifiedUser(ctx, "alice", "alice@example.com", "secret1")
	msg := fx.AddMessage(ctx, u.ID, "delete me", time.Now())

	del := func(id string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/api/delete-message/"+id, u)
		req = testutil.WithChiURLParam(req, "id", id)
		h.HandleDeleteMessage(rec.ResponseRecorder, req)
		return rec
	}

	del(msg.ID.Hex()).AssertStatus(t, http.StatusOK)

	// Repeat delete is a retryable 404, not an error state.
	del(msg.ID.Hex()).AssertStatus(t, http.StatusNotFound)

	del("not-an-objectid").AssertStatus(t, http.StatusBadRequest)
}

func TestHandleSendMessage(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	open := fx.CreateVerifiedUser(ctx, "open", "open@example.com", "secret1")
	fx.CreateClosedUser(ctx, "closed", "closed@example.com", "secret1")

	send := func(username, content string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleSendMessage(rec.ResponseRecorder, testutil.NewJSONRequest(
			http.MethodPost, "/api/send-message",
			schemas.SendMessageRequest{Username: username, Content: content}))
		return rec
	}

	t.Run("delivers anonymously", func(t *testing.T) {
		send("open", "hello from a stranger").AssertStatus(t, http.StatusOK)

		got, err := h.Users.GetByID(ctx, open.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if len(got.Messages) != 1 || got.Messages[0].Content != "hello from a stranger" {
			t.Errorf("message not stored as sent: %+v", got.Messages)
		}
	})

	t.Run("strips markup before storing", func(t *testing.T) {
		send("open", "hello <script>alert('x')</script> out there").AssertStatus(t, http.StatusOK)

		got, err := h.Users.GetByID(ctx, open.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		last := got.Messages[len(got.Messages)-1]
		if strings.Contains(last.Content, "<script>") || strings.Contains(last.Content, "alert") {
			t.Errorf("markup not stripped: %q", last.Content)
		}
	})

	t.Run("closed recipient is 403", func(t *testing.T) {
		send("closed", "should not arrive").AssertStatus(t, http.StatusForbidden)
	})

	t.Run("unknown recipient is 404", func(t *testing.T) {
		send("nobody", "into the void").AssertStatus(t, http.StatusNotFound)
	})

	t.Run("content bounds enforced", func(t *testing.T) {
		send("open", "too short").AssertStatus(t, http.StatusBadRequest)
		send("open", strings.Repeat("x", 301)).AssertStatus(t, http.StatusBadRequest)
	})
}
