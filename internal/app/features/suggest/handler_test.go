package suggest_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/whisperbox/internal/app/features/suggest"
	"github.com/dalemusser/whisperbox/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleSuggest_FallbackWithoutKey(t *testing.T) {
	h := suggest.NewHandler("", "", "", zap.NewNop())

	rec := testutil.NewRecorder()
	h.HandleSuggest(rec.ResponseRecorder, testutil.NewRequest(http.MethodPost, "/api/suggest-messages"))

	rec.AssertStatus(t, http.StatusOK)
	body := rec.Body.String()
	if parts := strings.Split(body, "||"); len(parts) != 3 {
		t.Errorf("expected three ||-separated suggestions, got %q", body)
	}
}

func TestHandleSuggest_StreamsUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization: got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("q1||q2||q3"))
	}))
	defer upstream.Close()

	h := suggest.NewHandler(upstream.URL, "test-key", "test-model", zap.NewNop())

	rec := testutil.NewRecorder()
	h.HandleSuggest(rec.ResponseRecorder, testutil.NewRequest(http.MethodPost, "/api/suggest-messages"))

	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != "q1||q2||q3" {
		t.Errorf("expected upstream body passed through, got %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected upstream content type, got %q", ct)
	}
}

func TestHandleSuggest_UpstreamFailureIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	h := suggest.NewHandler(upstream.URL, "test-key", "test-model", zap.NewNop())

	rec := testutil.NewRecorder()
	h.HandleSuggest(rec.ResponseRecorder, testutil.NewRequest(http.MethodPost, "/api/suggest-messages"))
	rec.AssertStatus(t, http.StatusBadGateway)
}
