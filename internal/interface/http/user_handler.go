package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

type UserHandler struct {
	Svc            *application.UserService
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, maxUploadBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

type updateAccountRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size"`
}

// CurrentUser GET /api/v1/users/current-user (auth required)
func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, ok := middleware.UserFrom(c.Request.Context())
	if !ok {
		var err error
		if u, err = h.Svc.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
			response.FromError(c, err, h.Logger)
			return
		}
	}
	response.Success(c, http.StatusOK, u, "current user fetched successfully", nil)
}

// UpdateAccount PATCH /api/v1/users/update-account (auth required)
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateAccountDetails(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.DisplayName, req.Email)
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u, "account details updated successfully", nil)
}

// UpdateAvatar PATCH /api/v1/users/avatar (auth required, multipart "avatar")
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.Svc.UpdateAvatar, "avatar updated successfully")
}

// UpdateCoverImage PATCH /api/v1/users/cover-image (auth required, multipart "coverImage")
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.Svc.UpdateCoverImage, "cover image updated successfully")
}

func (h *UserHandler) updateImage(c *gin.Context, field string,
	update func(ctx context.Context, id string, up application.Upload) (entity.PublicUser, error), msg string) {
	limitBody(c, h.MaxUploadBytes)

	up, closer, err := formUpload(c, field)
	defer closer.Close()
	switch {
	case errors.Is(err, errTooLarge):
		response.Error[any](c, http.StatusRequestEntityTooLarge, "upload is too large", nil)
		return
	case err != nil:
		response.FromError(c, apperror.Validation("invalid upload", map[string]string{field: "could not be read"}), h.Logger)
		return
	case up == nil:
		response.FromError(c, apperror.Validation(field+" file is missing", map[string]string{field: "is required"}), h.Logger)
		return
	}

	u, err := update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), *up)
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u, msg, nil)
}

// Search GET /api/v1/users/search?q=&size= (auth required)
func (h *UserHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, users, "users fetched successfully", gin.H{"count": len(users)})
}
