package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/metrics"
)

const defaultStoreTimeout = 5 * time.Second

// Deps are the collaborators shared by AuthService and UserService.
// Repo, Tokens and Hasher are required; the rest may be nil.
type Deps struct {
	Repo     repo.UserRepository
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Logger   *logrus.Logger
	Audit    repo.AuditRepository
	Notifier Notifier
	Index    Indexer
	Cache    IdentityCache
	Uploader MediaUploader
	Metrics  *metrics.Auth

	// StoreTimeout bounds every credential store call.
	StoreTimeout time.Duration
}

type base struct {
	Deps
}

func (b *base) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	t := b.StoreTimeout
	if t <= 0 {
		t = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, t)
}

func newBase(d Deps) base {
	if d.Logger == nil {
		d.Logger = helpers.NewNopLogger()
	}
	return base{Deps: d}
}

func (b *base) log() *logrus.Entry {
	return logrus.NewEntry(b.Logger)
}

// storeErr converts a repository failure to a typed application error.
func (b *base) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperror.NotFound("user not found")
	case errors.Is(err, repo.ErrDuplicate):
		return apperror.Conflict("user with this handle or email already exists")
	case errors.Is(err, context.DeadlineExceeded):
		b.log().WithError(err).WithField("op", op).Error("credential store timed out")
		return apperror.Internal("request timed out", err)
	default:
		b.log().WithError(err).WithField("op", op).Error("credential store failed")
		return apperror.Internal("", err)
	}
}

func (b *base) findByID(ctx context.Context, id string) (entity.User, error) {
	sctx, cancel := b.storeCtx(ctx)
	defer cancel()
	u, err := b.Repo.FindByID(sctx, id)
	if err != nil {
		return entity.User{}, b.storeErr("find user by id", err)
	}
	return u, nil
}

// audit records an event. Failures are logged and otherwise ignored.
func (b *base) audit(ctx context.Context, userID, action string, md map[string]any) {
	if b.Audit == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	sctx, cancel := b.storeCtx(ctx)
	defer cancel()
	err := b.Audit.Insert(sctx, repo.AuditEntry{
		UserID:    userID,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
	})
	if err != nil {
		b.log().WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

func (b *base) notify(ctx context.Context, template string, u entity.PublicUser) {
	if b.Notifier == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	sctx, cancel := b.storeCtx(ctx)
	defer cancel()
	if err := b.Notifier.Notify(sctx, template, u, map[string]string{"IP": meta.IP, "UserAgent": meta.UserAgent}); err != nil {
		b.log().WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "template": template}).Warn("enqueue notification failed")
	}
}

// profileChanged refreshes the derived copies of a user: cache and index.
func (b *base) profileChanged(ctx context.Context, u entity.PublicUser) {
	sctx, cancel := b.storeCtx(ctx)
	defer cancel()
	if b.Cache != nil {
		if err := b.Cache.Delete(sctx, u.ID); err != nil {
			b.log().WithError(err).WithField("user_id", u.ID).Warn("identity cache invalidation failed")
		}
	}
	if b.Index != nil {
		if err := b.Index.IndexUser(sctx, u); err != nil {
			b.log().WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
	}
}
