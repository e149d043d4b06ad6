package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

type AuthHandler struct {
	Svc            *application.AuthService
	Logger         *logrus.Logger
	Cookies        *helpers.Manager
	MaxUploadBytes int64
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, maxUploadBytes int64) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain), MaxUploadBytes: maxUploadBytes}
}

type registerRequest struct {
	Handle      string `form:"handle" binding:"required,handle"`
	Email       string `form:"email" binding:"required,email"`
	DisplayName string `form:"displayName" binding:"required"`
	Password    string `form:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Handle   string `json:"handle" binding:"required_without=Email"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

// sessionBody is returned by login and refresh. The same tokens are also
// set as cookies.
type sessionBody struct {
	User         entity.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// Register POST /api/v1/users/register (multipart)
func (h *AuthHandler) Register(c *gin.Context) {
	limitBody(c, h.MaxUploadBytes)

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		if isTooLarge(err) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "upload is too large", nil)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	avatar, ac, err := formUpload(c, "avatar")
	defer ac.Close()
	if err != nil {
		h.uploadError(c, err)
		return
	}
	cover, cc, err := formUpload(c, "coverImage")
	defer cc.Close()
	if err != nil {
		h.uploadError(c, err)
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Handle:      req.Handle,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Avatar:      avatar,
		CoverImage:  cover,
	})
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered successfully", nil)
}

// Login POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Handle:   req.Handle,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	h.writeSession(c, res, "user logged in successfully")
}

// RefreshToken POST /api/v1/users/refresh-token. The refresh token comes
// from the refreshToken cookie, else from the JSON body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		token = req.RefreshToken
	}

	res, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	h.writeSession(c, res, "access token refreshed")
}

// Logout POST /api/v1/users/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{}, "user logged out", nil)
}

// ChangePassword POST /api/v1/users/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		response.FromError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{}, "password changed successfully", nil)
}

func (h *AuthHandler) writeSession(c *gin.Context, res application.LoginResult, msg string) {
	t := res.Tokens
	h.Cookies.SetPair(c, t.AccessToken, t.AccessTokenExpiry, t.RefreshToken, t.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, sessionBody{
		User:         res.User,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}, msg, gin.H{
		"accessTokenExpiresAt":  t.AccessTokenExpiry,
		"refreshTokenExpiresAt": t.RefreshTokenExpiry,
	})
}

func (h *AuthHandler) uploadError(c *gin.Context, err error) {
	if errors.Is(err, errTooLarge) {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "upload is too large", nil)
		return
	}
	response.FromError(c, apperror.Validation("invalid upload", map[string]string{"file": "could not be read"}), h.Logger)
}
