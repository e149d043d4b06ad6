package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain. PasswordHash holds a
// bcrypt digest; RefreshToken holds the single live refresh token, empty when
// the user is logged out.
//
// Values are passed around as copies. Persistence takes explicit fields
// rather than a mutated User.
type User struct {
	ID            string
	Handle        string
	Email         string
	DisplayName   string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the only shape of a user that leaves the application layer.
// It has no password hash or refresh token field.
type PublicUser struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Handle:        u.Handle,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// NewUser is the set of fields needed to create a user.
type NewUser struct {
	Handle        string
	Email         string
	DisplayName   string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
}

// NormalizeHandle trims and lowercases a handle.
func NormalizeHandle(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// NormalizeEmail trims and lowercases an email.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
