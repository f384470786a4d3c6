package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is a persisted refresh session. The token travels in an HttpOnly cookie.
type Session struct {
	Token     string    `json:"token"` // UUID
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	Revoked   bool      `json:"revoked"`
	Device    string    `json:"device"` // "Chrome on Linux", etc.
}

func (s *Session) Usable(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetAll(ctx context.Context, limit, offset int) ([]*User, int64, error)

	UpdateProfile(ctx context.Context, id, firstName, lastName, phone string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error

	// Sessions
	SaveSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	RevokeSession(ctx context.Context, token string) error
	RevokeOtherSessions(ctx context.Context, userID, keepToken string) error
}

// LoginAttemptStore tracks failed logins per key (normalised email) for lockout.
type LoginAttemptStore interface {
	IsLocked(ctx context.Context, key string) (bool, error)
	// RegisterFailure records a failure and returns the count inside the current window.
	RegisterFailure(ctx context.Context, key string) (int, error)
	Lock(ctx context.Context, key string, d time.Duration) error
	Reset(ctx context.Context, key string) error
}
