// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that receives anonymous messages at /u/{username}.
//
// NOTE:
//   - Messages are embedded on the user document. A message has no
//     lifecycle outside its owner; all mutations are single-document.
//   - Username and email are only unique among *verified* users. An
//     unverified user may be overwritten by a fresh registration.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`

	PasswordHash string `bson:"password_hash" json:"-"`

	IsVerified       bool      `bson:"is_verified" json:"is_verified"`
	VerifyCodeHash   string    `bson:"verify_code_hash,omitempty" json:"-"` // bcrypt hash of the 6-digit code
	VerifyToken      string    `bson:"verify_token,omitempty" json:"-"`     // UUID for the magic link
	VerifyCodeExpiry time.Time `bson:"verify_code_expiry,omitempty" json:"-"`

	IsAcceptingMessages bool      `bson:"is_accepting_messages" json:"is_accepting_messages"`
	Messages            []Message `bson:"messages" json:"messages"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Message is one anonymous note embedded in its owner's document.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
