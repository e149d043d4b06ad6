package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func identityKey(userID string) string {
	return "user:identity:" + userID
}

// IdentityCache keeps the public view of recently resolved users so the auth
// guard does not hit Postgres on every request. Only PublicUser values are
// cached; secrets never reach Redis.
type IdentityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdentityCache(rdb *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{rdb: rdb, ttl: ttl}
}

func (c *IdentityCache) Get(ctx context.Context, userID string) (entity.PublicUser, bool, error) {
	var u entity.PublicUser
	ok, err := getJSON(ctx, c.rdb, identityKey(userID), &u)
	return u, ok, err
}

func (c *IdentityCache) Set(ctx context.Context, u entity.PublicUser) error {
	return setJSON(ctx, c.rdb, identityKey(u.ID), u, c.ttl)
}

func (c *IdentityCache) Delete(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, identityKey(userID)).Err()
}

func setJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func getJSON[T any](ctx context.Context, rdb *redis.Client, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}
