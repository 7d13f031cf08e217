package mailer_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/whisperbox/internal/app/system/mailer"
)

func TestBuildVerificationEmail(t *testing.T) {
	email := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  "WhisperBox",
		Username:  "alice",
		Code:      "123456",
		MagicLink: "https://example.com/verify/alice?token=abc",
		ExpiresIn: "1 hour",
	})

	if !strings.Contains(email.Subject, "WhisperBox") {
		t.Errorf("subject missing site name: %q", email.Subject)
	}
	for _, body := range []string{email.TextBody, email.HTMLBody} {
		if !strings.Contains(body, "123456") {
			t.Error("body missing verification code")
		}
		if !strings.Contains(body, "https://example.com/verify/alice?token=abc") {
			t.Error("body missing magic link")
		}
		if !strings.Contains(body, "1 hour") {
			t.Error("body missing expiry window")
		}
	}
	if !strings.Contains(email.TextBody, "alice") {
		t.Error("text body missing username")
	}
}
