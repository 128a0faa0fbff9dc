package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"files-manager-api/internal/domain/user"
)

const (
	// TTL is absolute: resolving a token never extends it.
	TTL       = 24 * time.Hour
	keyPrefix = "auth_"

	maxIssueAttempts = 3
)

var ErrTokenCollision = errors.New("could not allocate a unique session token")

type Cache struct {
	rdb      redis.Cmdable
	newToken func() string
}

func New(rdb redis.Cmdable) *Cache {
	return &Cache{
		rdb:      rdb,
		newToken: uuid.NewString,
	}
}

func key(token string) string { return keyPrefix + token }

func (c *Cache) Issue(ctx context.Context, userID user.ID) (string, error) {
	val := strconv.FormatInt(int64(userID), 10)
	for i := 0; i < maxIssueAttempts; i++ {
		token := c.newToken()
		ok, err := c.rdb.SetNX(ctx, key(token), val, TTL).Result()
		if err != nil {
			return "", fmt.Errorf("session set: %w", err)
		}
		if ok {
			return token, nil
		}
	}

	return "", ErrTokenCollision
}

// Resolve reports ok=false for unknown or expired tokens. Only a failing
// backend produces an error.
func (c *Cache) Resolve(ctx context.Context, token string) (user.ID, bool, error) {
	if token == "" {
		return user.Anonymous, false, nil
	}

	val, err := c.rdb.Get(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user.Anonymous, false, nil
		}
		return user.Anonymous, false, fmt.Errorf("session get: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return user.Anonymous, false, nil
	}

	return user.ID(id), true, nil
}

func (c *Cache) Revoke(ctx context.Context, token string) error {
	if err := c.rdb.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("session del: %w", err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
