package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// TokenIssuer is satisfied by *helpers.JWTManager.
type TokenIssuer interface {
	IssueAccess(s helpers.TokenSubject) (string, time.Time, error)
	IssueRefresh(s helpers.TokenSubject) (string, time.Time, error)
	ParseRefreshToken(token string) (*helpers.RefreshClaims, error)
}

// PasswordHasher is satisfied by *helpers.PasswordHasher.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hash string) bool
}

type MediaUploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
}

type IdentityCache interface {
	Get(ctx context.Context, userID string) (entity.PublicUser, bool, error)
	Set(ctx context.Context, u entity.PublicUser) error
	Delete(ctx context.Context, userID string) error
}

type Indexer interface {
	IndexUser(ctx context.Context, u entity.PublicUser) error
	Search(ctx context.Context, q string, size int) ([]entity.PublicUser, error)
}

type Notifier interface {
	Notify(ctx context.Context, template string, u entity.PublicUser, meta map[string]string) error
}

// Upload is a file received from the client, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// RequestMeta describes the caller for audit and notifications.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
