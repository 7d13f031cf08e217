// Package schemas holds the request payloads and their validation
// rules. Every API handler decodes into one of these and calls
// Validate before touching the store.
package schemas

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Field limits shared with the store and the page templates.
const (
	UsernameMinLength = 2
	UsernameMaxLength = 20
	PasswordMinLength = 6
	ContentMinLength  = 10
	ContentMaxLength  = 300
	VerifyCodeLength  = 6
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// usernameRules is shared by every payload that carries a username.
var usernameRules = []validation.Rule{
	validation.Required,
	validation.Length(UsernameMinLength, UsernameMaxLength),
	validation.Match(usernamePattern).Error("must contain only letters, numbers, and underscores"),
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the validation rules.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(PasswordMinLength, 100)),
	)
}

// SignInRequest carries either a username or an email in Identifier.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate runs the validation rules.
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// VerifyCodeRequest submits the emailed code for a pending account.
type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// Validate runs the validation rules.
func (r VerifyCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Code,
			validation.Required,
			validation.Length(VerifyCodeLength, VerifyCodeLength),
			is.Digit,
		),
	)
}

// SendMessageRequest is an anonymous message for a recipient.
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// Validate runs the validation rules.
func (r SendMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Content,
			validation.Required,
			validation.Length(ContentMinLength, ContentMaxLength),
		),
	)
}

// AcceptMessagesRequest toggles whether the signed-in user accepts
// anonymous messages. The pointer distinguishes "absent" from "false".
type AcceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

// Validate runs the validation rules.
func (r AcceptMessagesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AcceptMessages, validation.NotNil),
	)
}

// SuggestMessagesRequest optionally themes the suggestions.
type SuggestMessagesRequest struct {
	Topic string `json:"topic"`
}

// Validate runs the validation rules.
func (r SuggestMessagesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Length(0, 100)),
	)
}

// ValidUsername reports whether a path or query parameter is a
// well-formed username, for endpoints that take the name alone.
func ValidUsername(username string) bool {
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return false
	}
	return usernamePattern.MatchString(username)
}
