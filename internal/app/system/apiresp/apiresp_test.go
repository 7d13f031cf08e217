package apiresp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/whisperbox/internal/app/system/apiresp"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return got
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	apiresp.OK(rec, http.StatusOK, "done")

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	got := decode(t, rec)
	if got["success"] != true {
		t.Errorf("success: got %v, want true", got["success"])
	}
	if got["message"] != "done" {
		t.Errorf("message: got %v, want %q", got["message"], "done")
	}
}

func TestOKWith_FlattensExtra(t *testing.T) {
	rec := httptest.NewRecorder()
	apiresp.OKWith(rec, http.StatusOK, "", map[string]any{
		"isAcceptingMessages": true,
	})

	got := decode(t, rec)
	if got["isAcceptingMessages"] != true {
		t.Errorf("expected extra field at top level, got %v", got)
	}
	if _, present := got["message"]; present {
		t.Error("empty message should be omitted")
	}
	if _, present := got["Extra"]; present {
		t.Error("Extra must not appear as a nested object")
	}
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	apiresp.Fail(rec, http.StatusNotFound, "User not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	got := decode(t, rec)
	if got["success"] != false {
		t.Errorf("success: got %v, want false", got["success"])
	}
}

func TestServerError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	apiresp.ServerError(rec, zap.NewNop(), "load user", errDetail{})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if body := rec.Body.String(); strings.Contains(body, "connection string") || strings.Contains(body, "mongodb") {
		t.Errorf("internal detail leaked to client: %q", body)
	}
}

type errDetail struct{}

func (errDetail) Error() string { return "mongodb: bad connection string" }
