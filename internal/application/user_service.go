package application

import (
	"context"
	"strings"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/apperror"
)

// UserService serves profile reads and updates for an authenticated user.
type UserService struct {
	base
}

func NewUserService(d Deps) *UserService {
	return &UserService{base: newBase(d)}
}

// CurrentUser resolves the public view of a user, reading through the
// identity cache when one is configured.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (entity.PublicUser, error) {
	if s.Cache != nil {
		cctx, cancel := s.storeCtx(ctx)
		u, ok, err := s.Cache.Get(cctx, userID)
		cancel()
		if err != nil {
			s.log().WithError(err).WithField("user_id", userID).Warn("identity cache read failed")
		} else if ok {
			return u, nil
		}
	}

	u, err := s.findByID(ctx, userID)
	if err != nil {
		return entity.PublicUser{}, err
	}
	public := u.Public()
	if s.Cache != nil {
		cctx, cancel := s.storeCtx(ctx)
		if err := s.Cache.Set(cctx, public); err != nil {
			s.log().WithError(err).WithField("user_id", userID).Warn("identity cache write failed")
		}
		cancel()
	}
	return public, nil
}

func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, displayName, email string) (entity.PublicUser, error) {
	name := strings.TrimSpace(displayName)
	email = entity.NormalizeEmail(email)
	if name == "" || email == "" {
		return entity.PublicUser{}, apperror.Validation("all fields are required", nil)
	}

	sctx, cancel := s.storeCtx(ctx)
	u, err := s.Repo.UpdateAccount(sctx, userID, name, email)
	cancel()
	if err != nil {
		return entity.PublicUser{}, s.storeErr("update account", err)
	}
	public := u.Public()
	s.profileChanged(ctx, public)
	s.audit(ctx, userID, "update_account", nil)
	return public, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, up Upload) (entity.PublicUser, error) {
	return s.updateImage(ctx, userID, up, "avatars/"+userID, s.Repo.UpdateAvatar)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, up Upload) (entity.PublicUser, error) {
	return s.updateImage(ctx, userID, up, "covers/"+userID, s.Repo.UpdateCoverImage)
}

func (s *UserService) updateImage(ctx context.Context, userID string, up Upload, folder string,
	save func(ctx context.Context, id, url string) (entity.User, error)) (entity.PublicUser, error) {
	if up.Body == nil {
		return entity.PublicUser{}, apperror.Validation("image file is missing", nil)
	}
	if s.Uploader == nil {
		return entity.PublicUser{}, apperror.Internal("image upload is unavailable", nil)
	}
	url, err := s.Uploader.Upload(ctx, folder, up.Filename, up.ContentType, up.Body)
	if err != nil {
		s.log().WithError(err).WithField("user_id", userID).Error("image upload failed")
		return entity.PublicUser{}, apperror.Internal("image upload failed, please try again", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	u, err := save(sctx, userID, url)
	cancel()
	if err != nil {
		return entity.PublicUser{}, s.storeErr("update image", err)
	}
	public := u.Public()
	s.profileChanged(ctx, public)
	return public, nil
}

// SearchUsers queries the user directory. A size outside [1, 50] falls
// back to 10.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicUser, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("query is required", map[string]string{"q": "is required"})
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.Index == nil {
		return []entity.PublicUser{}, nil
	}
	out, err := s.Index.Search(ctx, q, size)
	if err != nil {
		s.log().WithError(err).Warn("user search failed")
		return nil, apperror.Internal("search is unavailable", err)
	}
	return out, nil
}
