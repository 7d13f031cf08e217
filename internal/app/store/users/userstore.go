package userstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/whisperbox/internal/app/system/authutil"
	"github.com/dalemusser/whisperbox/internal/app/system/normalize"
	"github.com/dalemusser/whisperbox/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// VerifyCodeExpiry is how long a registration code stays redeemable.
const VerifyCodeExpiry = time.Hour

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a verified user already holds the
	// username or email.
	ErrDuplicate = errors.New("a verified user with this username or email already exists")
	// ErrNotAccepting is returned when the recipient exists but has
	// message acceptance switched off.
	ErrNotAccepting = errors.New("user is not accepting messages")
	// ErrMessageNotFound is returned when a message id does not exist
	// on the user's document (already deleted, or never theirs).
	ErrMessageNotFound = errors.New("message not found")
	// ErrCodeExpired is returned when the verification code window has
	// passed.
	ErrCodeExpired = errors.New("verification code has expired")
	// ErrCodeInvalid is returned when the submitted code does not match.
	ErrCodeInvalid = errors.New("verification code is incorrect")
	// ErrAlreadyVerified is returned when the account needs no
	// verification.
	ErrAlreadyVerified = errors.New("account is already verified")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Registration is the outcome of a sign-up: the stored user plus the
// plain-text code and magic-link token to email. The code is never
// persisted in plain text.
type Registration struct {
	User  models.User
	Code  string
	Token string
}

// Register creates a pending (unverified) account, or refreshes the
// pending account that already holds this email. A verified user on the
// same email or username surfaces as ErrDuplicate.
func (s *Store) Register(ctx context.Context, username, email, password string) (*Registration, error) {
	username = normalize.Username(username)
	email = normalize.Email(email)

	// Verified owners of the name or address win outright.
	taken, err := s.verifiedExists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	passwordHash, err := authutil.HashPassword(password)
	if err != nil {
		return nil, err
	}

	code := generateCode()
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), authutil.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash code: %w", err)
	}
	token := uuid.NewString()

	now := time.Now()
	u := models.User{
		Username:            username,
		UsernameCI:          normalize.UsernameCI(username),
		Email:               email,
		PasswordHash:        passwordHash,
		IsVerified:          false,
		VerifyCodeHash:      string(codeHash),
		VerifyToken:         token,
		VerifyCodeExpiry:    now.Add(VerifyCodeExpiry),
		IsAcceptingMessages: true,
		Messages:            []models.Message{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// An unverified account on the same email is overwritten in place,
	// so an abandoned sign-up never wedges the address.
	var existing models.User
	err = s.c.FindOne(ctx, bson.M{"email": email, "is_verified": false}).Decode(&existing)
	switch {
	case err == nil:
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": existing.ID}, u); err != nil {
			return nil, err
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		u.ID = primitive.NewObjectID()
		if _, err := s.c.InsertOne(ctx, u); err != nil {
			if wafflemongo.IsDup(err) {
				return nil, ErrDuplicate
			}
			return nil, err
		}
	default:
		return nil, err
	}

	return &Registration{User: u, Code: code, Token: token}, nil
}

// verifiedExists reports whether a verified user holds the username
// (case-folded) or the email.
func (s *Store) verifiedExists(ctx context.Context, username, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"is_verified": true,
		"$or": bson.A{
			bson.M{"username_ci": normalize.UsernameCI(username)},
			bson.M{"email": normalize.Email(email)},
		},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// VerifiedUsernameExists reports whether a verified user holds the
// username. Pending registrations do not count.
func (s *Store) VerifiedUsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"username_ci": normalize.UsernameCI(username),
		"is_verified": true,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username_ci": normalize.UsernameCI(username)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier looks up a user by username or email. Sign-in accepts
// either in one field.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username_ci": normalize.UsernameCI(identifier)},
		bson.M{"email": normalize.Email(identifier)},
	}}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// VerifyCode checks the emailed code for a pending account and marks it
// verified on success. Expiry is checked before the code so the caller
// can tell the user to re-register.
func (s *Store) VerifyCode(ctx context.Context, username, code string) (*models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if time.Now().After(u.VerifyCodeExpiry) {
		return nil, ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(u.VerifyCodeHash), []byte(code)) != nil {
		return nil, ErrCodeInvalid
	}
	return s.markVerified(ctx, u)
}

// VerifyToken redeems a magic-link token and marks the account
// verified.
func (s *Store) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{
		"verify_token": token,
		"is_verified":  false,
	}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if time.Now().After(u.VerifyCodeExpiry) {
		return nil, ErrCodeExpired
	}
	return s.markVerified(ctx, &u)
}

// markVerified flips the flag and clears the single-use verification
// material.
func (s *Store) markVerified(ctx context.Context, u *models.User) (*models.User, error) {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{
		"$set": bson.M{
			"is_verified": true,
			"updated_at":  time.Now(),
		},
		"$unset": bson.M{
			"verify_code_hash": "",
			"verify_token":     "",
		},
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			// Someone else verified this username/email first.
			return nil, ErrDuplicate
		}
		return nil, err
	}
	u.IsVerified = true
	u.VerifyCodeHash = ""
	u.VerifyToken = ""
	return u, nil
}

// SetAcceptingMessages toggles the acceptance flag.
func (s *Store) SetAcceptingMessages(ctx context.Context, id primitive.ObjectID, accepting bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"is_accepting_messages": accepting,
			"updated_at":            time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage delivers an anonymous message to a recipient. The
// acceptance check and the push happen in one atomic update, so a
// recipient who toggles acceptance off mid-flight never receives it.
func (s *Store) AppendMessage(ctx context.Context, username, content string) (*models.Message, error) {
	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Content:   content,
		CreatedAt: time.Now(),
	}

	res, err := s.c.UpdateOne(ctx, bson.M{
		"username_ci":           normalize.UsernameCI(username),
		"is_verified":           true,
		"is_accepting_messages": true,
	}, bson.M{
		"$push": bson.M{"messages": msg},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 1 {
		return &msg, nil
	}

	// Nothing matched: distinguish absent recipient from one who is
	// not accepting.
	n, err := s.c.CountDocuments(ctx, bson.M{
		"username_ci": normalize.UsernameCI(username),
		"is_verified": true,
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrNotAccepting
}

// DeleteMessage removes one message from the user's document. A miss
// (already deleted, or never theirs) is ErrMessageNotFound, which the
// handler treats as a retryable 404.
func (s *Store) DeleteMessage(ctx context.Context, userID, messageID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"messages": bson.M{"_id": messageID}},
	})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListMessages returns the user's messages newest-first via an
// aggregation (unwind, sort, regroup). A user with no messages gets an
// empty slice; an absent user gets ErrNotFound.
func (s *Store) ListMessages(ctx context.Context, userID primitive.ObjectID) ([]models.Message, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$unwind", Value: "$messages"}},
		{{Key: "$sort", Value: bson.M{"messages.created_at": -1}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$_id",
			"messages": bson.M{"$push": "$messages"},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Messages []models.Message `bson:"messages"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows[0].Messages, nil
	}

	// $unwind drops users with an empty messages array, so an empty
	// aggregation result can mean either "no messages" or "no user".
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return []models.Message{}, nil
}

// generateCode generates a random 6-digit numeric code.
// Panics if the system's cryptographic random number generator fails.
func generateCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	// Ensure 6 digits (100000 to 999999)
	code := (n % 900000) + 100000
	return fmt.Sprintf("%06d", code)
}
