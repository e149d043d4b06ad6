package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a handle or email is already taken.
	ErrDuplicate = errors.New("handle or email already exists")
	// ErrTokenMismatch is returned by RotateRefreshToken when the stored
	// token is no longer the expected one.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

// UserRepository is the credential store. Every method is a single atomic
// statement against one user row.
type UserRepository interface {
	FindByHandleOrEmail(ctx context.Context, handle, email string) (entity.User, error)
	FindByID(ctx context.Context, id string) (entity.User, error)
	Create(ctx context.Context, u entity.NewUser) (entity.User, error)

	// UpdateRefreshToken overwrites the stored token. An empty token clears it.
	UpdateRefreshToken(ctx context.Context, id, token string) (entity.User, error)
	// RotateRefreshToken swaps expected for next only if expected is still
	// the stored value.
	RotateRefreshToken(ctx context.Context, id, expected, next string) (entity.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) (entity.User, error)

	UpdateAccount(ctx context.Context, id, displayName, email string) (entity.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (entity.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (entity.User, error)
}

// AuditEntry is one row of the authentication audit trail.
type AuditEntry struct {
	UserID    string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
}
