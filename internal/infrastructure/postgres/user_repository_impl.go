package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

const userColumns = `id, handle, email, display_name, password_hash, avatar_url,
	cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

type UserRepository struct {
	pool poolIface
}

func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Handle, &u.Email, &u.DisplayName, &u.PasswordHash, &u.AvatarURL,
		&u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// mapErr turns driver errors into repository sentinels, wrapping anything
// unexpected with the operation name.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return repository.ErrDuplicate
	}
	return oops.In("postgres").With("op", op).Wrap(err)
}

func (r *UserRepository) queryOne(ctx context.Context, op, sql string, args ...any) (entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return entity.User{}, mapErr(op, err)
	}
	return u, nil
}

func (r *UserRepository) FindByHandleOrEmail(ctx context.Context, handle, email string) (entity.User, error) {
	return r.queryOne(ctx, "find user by handle or email", `
		SELECT `+userColumns+`
		FROM users
		WHERE handle = $1 OR email = $2
		LIMIT 1
	`, handle, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (entity.User, error) {
	return r.queryOne(ctx, "find user by id", `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) Create(ctx context.Context, n entity.NewUser) (entity.User, error) {
	return r.queryOne(ctx, "create user", `
		INSERT INTO users (handle, email, display_name, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		n.Handle, n.Email, n.DisplayName, n.PasswordHash, n.AvatarURL, n.CoverImageURL)
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id, token string) (entity.User, error) {
	return r.queryOne(ctx, "update refresh token", `
		UPDATE users
		SET refresh_token = NULLIF($2, ''), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, token)
}

// RotateRefreshToken is a compare-and-swap on the refresh_token column, so two
// concurrent refreshes presenting the same token cannot both win.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) (entity.User, error) {
	u, err := r.queryOne(ctx, "rotate refresh token", `
		UPDATE users
		SET refresh_token = $3, updated_at = now()
		WHERE id = $1 AND refresh_token = $2
		RETURNING `+userColumns,
		id, expected, next)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.User{}, repository.ErrTokenMismatch
	}
	return u, err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) (entity.User, error) {
	return r.queryOne(ctx, "update password hash", `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, hash)
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id, displayName, email string) (entity.User, error) {
	return r.queryOne(ctx, "update account", `
		UPDATE users
		SET display_name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, displayName, email)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, url string) (entity.User, error) {
	return r.queryOne(ctx, "update avatar", `
		UPDATE users
		SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, url)
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id, url string) (entity.User, error) {
	return r.queryOne(ctx, "update cover image", `
		UPDATE users
		SET cover_image_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, url)
}

var _ repository.UserRepository = (*UserRepository)(nil)
