package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("wrong password")
)

// Message is a notification in a user's inbox. EventID is the public
// identifier of the event the message relates to, not its storage id.
// swagger:model Message
type Message struct {
	Text    string `json:"text"`
	EventID int    `json:"event_id"`
}

// User represents a registered user. The six membership slices mirror the
// event-side invited/accepted lists: every state machine transition updates
// both sides in the same logical operation, because nothing underneath
// enforces referential integrity between them.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Departure    *GeoPoint `json:"departure,omitempty"`

	OwnedWTMs       []string `json:"owned_wtms"`
	ParticipantWTMs []string `json:"participant_wtms"`
	InvitedWTMs     []string `json:"invited_wtms"`

	OwnedAppointments       []string `json:"owned_appointments"`
	ParticipantAppointments []string `json:"participant_appointments"`
	InvitedAppointments     []string `json:"invited_appointments"`

	Messages []Message `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the
// repository on create.
func NewUser(email, username, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles password hashing and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage. Save is a
// whole-record write: the caller loads the user, mutates it in memory, and
// saves it back. There is no version guard, so concurrent saves of the same
// user are last-write-wins.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	Save(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// AppendMessage atomically appends one message to the user's inbox
	// without rewriting the rest of the record.
	AppendMessage(ctx context.Context, id string, msg Message) error
	// DrainMessages reads and clears the inbox in a single statement so a
	// message appended between read and clear cannot be lost.
	DrainMessages(ctx context.Context, id string) ([]Message, error)
	ClearMessages(ctx context.Context, id string) error
}

// EventRef is a compact reference to an event in user-facing listings.
// swagger:model EventRef
type EventRef struct {
	Name       string `json:"name"`
	Identifier int    `json:"identifier"`
}

// GuestWTMs groups the WTMs a user is a guest of by invitation state.
// swagger:model GuestWTMs
type GuestWTMs struct {
	Invited  []EventRef `json:"invited"`
	Accepted []EventRef `json:"accepted"`
}

// UserService defines the business logic for accounts, the inbox, and
// user-side event listings.
type UserService interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SignUp(ctx context.Context, email, username, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	ResetPassword(ctx context.Context, userID, newPassword string) (bool, error)
	GetMessages(ctx context.Context, userID string) ([]Message, error)
	ClearMessages(ctx context.Context, userID string) error
	UpdateDeparture(ctx context.Context, userID string, departure GeoPoint) error
	OwnedWTMs(ctx context.Context, userID string) ([]EventRef, error)
	GuestWTMs(ctx context.Context, userID string) (*GuestWTMs, error)
}
