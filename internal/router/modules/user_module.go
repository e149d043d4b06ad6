package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
)

// UserModule wires the account handlers under /v1/users.
// Public: POST register, login, refresh-token
// Protected: POST logout, change-password; GET current-user, search;
// PATCH update-account, avatar, cover-image
type UserModule struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	Guard gin.HandlerFunc
}

func NewUserModule(a *handlers.AuthHandler, u *handlers.UserHandler, guard gin.HandlerFunc) *UserModule {
	return &UserModule{Auth: a, Users: u, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")
	users.POST("/register", m.Auth.Register)
	users.POST("/login", m.Auth.Login)
	users.POST("/refresh-token", m.Auth.RefreshToken)

	auth := users.Group("/")
	auth.Use(m.Guard)
	{
		auth.POST("/logout", m.Auth.Logout)
		auth.POST("/change-password", m.Auth.ChangePassword)
		auth.GET("/current-user", m.Users.CurrentUser)
		auth.PATCH("/update-account", m.Users.UpdateAccount)
		auth.PATCH("/avatar", m.Users.UpdateAvatar)
		auth.PATCH("/cover-image", m.Users.UpdateCoverImage)
		auth.GET("/search", m.Users.Search)
	}
}
