package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/metrics"
	"github.com/oksasatya/user-account-service/pkg/response"
)

const (
	CtxUserIDKey      = "userID"
	CtxCurrentUserKey = "currentUser"
)

// AccessVerifier is satisfied by *helpers.JWTManager.
type AccessVerifier interface {
	ParseAccessToken(token string) (*helpers.AccessClaims, error)
}

// IdentityResolver is satisfied by *application.UserService.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, userID string) (entity.PublicUser, error)
}

// Auth validates the access token and attaches the caller's identity. The
// token is read from the accessToken cookie, then from a Bearer header.
// Refresh-token state is not consulted.
func Auth(tokens AccessVerifier, users IdentityResolver, logger *logrus.Logger, m *metrics.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			m.GuardRejected("missing")
			response.Abort(c, http.StatusUnauthorized, "unauthorized request", nil)
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			reason := helpers.VerifyFailure(err)
			m.GuardRejected(reason)
			helpers.LogWarn(logger, "access token rejected", nil, logrus.Fields{
				"reason": reason,
				"path":   c.FullPath(),
			})
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		u, err := users.CurrentUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				m.GuardRejected("unknown_user")
				response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
				return
			}
			response.FromError(c, err, logger)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxCurrentUserKey, u)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if t, err := c.Cookie(helpers.AccessCookie); err == nil && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

type userKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u entity.PublicUser) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user attached by Auth.
func UserFrom(ctx context.Context) (entity.PublicUser, bool) {
	u, ok := ctx.Value(userKey{}).(entity.PublicUser)
	return u, ok
}
