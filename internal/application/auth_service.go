package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/mailer"
)

// AuthService owns the session lifecycle: registration, login, refresh
// rotation, logout and password changes.
type AuthService struct {
	base
}

func NewAuthService(d Deps) *AuthService {
	return &AuthService{base: newBase(d)}
}

type TokenPair struct {
	AccessToken        string    `json:"accessToken"`
	AccessTokenExpiry  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken       string    `json:"refreshToken"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiresAt"`
}

type LoginResult struct {
	User   entity.PublicUser
	Tokens TokenPair
}

type RegisterInput struct {
	Handle        string
	Email         string
	DisplayName   string
	Password      string
	AvatarURL     string
	CoverImageURL string

	// Avatar and CoverImage are uploaded only after the uniqueness check
	// passes. A non-empty URL field takes precedence.
	Avatar     *Upload
	CoverImage *Upload
}

type LoginInput struct {
	Handle   string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (entity.PublicUser, error) {
	handle := entity.NormalizeHandle(in.Handle)
	email := entity.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.DisplayName)

	missing := map[string]string{}
	for field, v := range map[string]string{"handle": handle, "email": email, "displayName": name, "password": strings.TrimSpace(in.Password)} {
		if v == "" {
			missing[field] = "is required"
		}
	}
	if len(missing) > 0 {
		return entity.PublicUser{}, apperror.Validation("all fields are required", missing)
	}
	if helpers.PasswordTooLong(in.Password) {
		return entity.PublicUser{}, passwordTooLong("password")
	}

	sctx, cancel := s.storeCtx(ctx)
	_, err := s.Repo.FindByHandleOrEmail(sctx, handle, email)
	cancel()
	switch {
	case err == nil:
		return entity.PublicUser{}, apperror.Conflict("user with this handle or email already exists")
	case !errors.Is(err, repo.ErrNotFound):
		return entity.PublicUser{}, s.storeErr("find user by handle or email", err)
	}

	avatarURL, err := s.resolveImage(ctx, in.AvatarURL, in.Avatar, "avatars/"+handle)
	if err != nil {
		return entity.PublicUser{}, err
	}
	if avatarURL == "" {
		return entity.PublicUser{}, apperror.Validation("avatar is required", map[string]string{"avatar": "is required"})
	}
	coverURL, err := s.resolveImage(ctx, in.CoverImageURL, in.CoverImage, "covers/"+handle)
	if err != nil {
		return entity.PublicUser{}, err
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		s.log().WithError(err).Error("password hashing failed")
		return entity.PublicUser{}, apperror.Internal("", err)
	}

	sctx, cancel = s.storeCtx(ctx)
	created, err := s.Repo.Create(sctx, entity.NewUser{
		Handle:        handle,
		Email:         email,
		DisplayName:   name,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	cancel()
	if err != nil {
		return entity.PublicUser{}, s.storeErr("create user", err)
	}

	public := created.Public()
	s.Metrics.Registered()
	s.log().WithFields(logrus.Fields{"user_id": public.ID, "handle": public.Handle}).Info("user registered")
	s.profileChanged(ctx, public)
	s.notify(ctx, mailer.TemplateWelcome, public)
	s.audit(ctx, public.ID, "register", nil)
	return public, nil
}

func (s *AuthService) resolveImage(ctx context.Context, url string, up *Upload, folder string) (string, error) {
	if url = strings.TrimSpace(url); url != "" || up == nil {
		return url, nil
	}
	if s.Uploader == nil {
		return "", apperror.Internal("image upload is unavailable", nil)
	}
	out, err := s.Uploader.Upload(ctx, folder, up.Filename, up.ContentType, up.Body)
	if err != nil {
		s.log().WithError(err).WithField("folder", folder).Error("image upload failed")
		return "", apperror.Internal("image upload failed, please try again", err)
	}
	return out, nil
}

// Login verifies the password and starts a new session. The new refresh
// token replaces whatever was stored, which ends any previous session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	handle := entity.NormalizeHandle(in.Handle)
	email := entity.NormalizeEmail(in.Email)
	if handle == "" && email == "" {
		return LoginResult{}, apperror.Validation("handle or email is required", map[string]string{"handle": "handle or email is required"})
	}

	sctx, cancel := s.storeCtx(ctx)
	u, err := s.Repo.FindByHandleOrEmail(sctx, handle, email)
	cancel()
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.Login("unknown_user")
			return LoginResult{}, apperror.NotFound("user does not exist")
		}
		return LoginResult{}, s.storeErr("find user by handle or email", err)
	}

	if !s.Hasher.Verify(ctx, in.Password, u.PasswordHash) {
		s.Metrics.Login("bad_password")
		s.audit(ctx, u.ID, "login_failed", nil)
		return LoginResult{}, apperror.Auth("invalid credentials")
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return LoginResult{}, err
	}

	sctx, cancel = s.storeCtx(ctx)
	stored, err := s.Repo.UpdateRefreshToken(sctx, u.ID, pair.RefreshToken)
	cancel()
	if err != nil {
		return LoginResult{}, s.storeErr("update refresh token", err)
	}

	public := stored.Public()
	s.Metrics.Login("success")
	s.log().WithField("user_id", u.ID).Info("user logged in")
	s.notify(ctx, mailer.TemplateLogin, public)
	s.audit(ctx, u.ID, "login", nil)
	return LoginResult{User: public, Tokens: pair}, nil
}

// Refresh exchanges the live refresh token for a new pair. Presenting any
// other token, including one this user held earlier, fails.
func (s *AuthService) Refresh(ctx context.Context, presented string) (LoginResult, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		s.Metrics.Refresh("missing")
		return LoginResult{}, apperror.Auth("refresh token is required")
	}

	claims, err := s.Tokens.ParseRefreshToken(presented)
	if err != nil {
		reason := helpers.VerifyFailure(err)
		s.Metrics.Refresh(reason)
		s.log().WithField("reason", reason).Info("refresh token rejected")
		return LoginResult{}, apperror.Auth("invalid refresh token")
	}

	u, err := s.findByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.Metrics.Refresh("unknown_user")
			return LoginResult{}, apperror.Auth("invalid refresh token")
		}
		return LoginResult{}, err
	}

	if !tokensEqual(u.RefreshToken, presented) {
		return LoginResult{}, s.rejectReuse(ctx, u.ID)
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return LoginResult{}, err
	}

	sctx, cancel := s.storeCtx(ctx)
	stored, err := s.Repo.RotateRefreshToken(sctx, u.ID, presented, pair.RefreshToken)
	cancel()
	switch {
	case errors.Is(err, repo.ErrTokenMismatch):
		// a concurrent refresh with the same token won the swap
		return LoginResult{}, s.rejectReuse(ctx, u.ID)
	case err != nil:
		return LoginResult{}, s.storeErr("rotate refresh token", err)
	}

	s.Metrics.Refresh("success")
	s.audit(ctx, u.ID, "refresh", nil)
	return LoginResult{User: stored.Public(), Tokens: pair}, nil
}

func (s *AuthService) rejectReuse(ctx context.Context, userID string) error {
	s.Metrics.Refresh("reuse")
	s.log().WithField("user_id", userID).Warn("refresh token reuse detected")
	s.audit(ctx, userID, "refresh_reuse", nil)
	return apperror.Auth("refresh token is expired or used")
}

// Logout clears the stored refresh token. Clearing an already empty token
// is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	sctx, cancel := s.storeCtx(ctx)
	_, err := s.Repo.UpdateRefreshToken(sctx, userID, "")
	cancel()
	if err != nil {
		return s.storeErr("clear refresh token", err)
	}
	s.log().WithField("user_id", userID).Info("user logged out")
	s.audit(ctx, userID, "logout", nil)
	return nil
}

// ChangePassword re-hashes the password after verifying the old one. The
// refresh token is left as is.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperror.Validation("new password is required", map[string]string{"newPassword": "is required"})
	}
	if helpers.PasswordTooLong(newPassword) {
		return passwordTooLong("newPassword")
	}

	u, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.Hasher.Verify(ctx, oldPassword, u.PasswordHash) {
		s.audit(ctx, userID, "change_password_failed", nil)
		return apperror.Auth("invalid old password")
	}

	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		s.log().WithError(err).Error("password hashing failed")
		return apperror.Internal("", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	updated, err := s.Repo.UpdatePasswordHash(sctx, userID, hash)
	cancel()
	if err != nil {
		return s.storeErr("update password hash", err)
	}

	s.notify(ctx, mailer.TemplatePasswordChanged, updated.Public())
	s.audit(ctx, userID, "change_password", nil)
	return nil
}

func passwordTooLong(field string) error {
	return apperror.Validation("password is too long", map[string]string{field: "must be at most 72 bytes"})
}

func (s *AuthService) issuePair(u entity.User) (TokenPair, error) {
	sub := helpers.TokenSubject{ID: u.ID, Email: u.Email, Handle: u.Handle, DisplayName: u.DisplayName}
	access, aexp, err := s.Tokens.IssueAccess(sub)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, apperror.Internal("unable to generate tokens at the moment", err)
	}
	refresh, rexp, err := s.Tokens.IssueRefresh(sub)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, apperror.Internal("unable to generate tokens at the moment", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func tokensEqual(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
