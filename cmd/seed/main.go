package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		logger.WithError(err).Fatal("failed to open db")
	}
	defer func() { _ = db.Close() }()

	handle := entity.NormalizeHandle("demo")
	email := entity.NormalizeEmail("demo@example.com")
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (handle, email, display_name, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = now()
		RETURNING id
	`, handle, email, "Demo User", hash, "https://www.gravatar.com/avatar/?d=identicon").Scan(&id)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	logger.WithField("user_id", id).WithField("handle", handle).Info("seeded demo user")
}
