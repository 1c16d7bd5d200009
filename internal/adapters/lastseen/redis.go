package lastseen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:lastseen:"

// Redis keeps the moment each user went offline, as unix milliseconds.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(user domain.UserID) string { return keyPrefix + user.String() }

func (r *Redis) Touch(ctx context.Context, user domain.UserID, at time.Time) error {
	if err := r.client.Set(ctx, key(user), at.UnixMilli(), r.ttl).Err(); err != nil {
		return fmt.Errorf("set last seen: %w", err)
	}
	return nil
}

func (r *Redis) LastSeen(ctx context.Context, user domain.UserID) (time.Time, bool, error) {
	raw, err := r.client.Get(ctx, key(user)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get last seen: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode last seen %q: %w", raw, err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}
