// Package lock provides a small Redis-backed mutual exclusion primitive
// used to serialize sync runs and projector writes against the same
// repository/PR so two webhook deliveries never race each other.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prbot/prbot/pkg/errors"
)

const (
	// acquireTimeout mirrors the original's blocking_timeout=0.1 on the
	// redis-py Lock primitive.
	acquireTimeout = 100 * time.Millisecond
	acquirePoll    = 10 * time.Millisecond
	leaseTTL       = 30 * time.Second
)

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Client acquires and releases named locks backed by Redis.
type Client interface {
	// Lock blocks up to acquireTimeout trying to acquire key, runs fn while
	// held, and releases it afterwards. Returns ErrCodeLockUnavailable if
	// the lock could not be acquired in time.
	Lock(ctx context.Context, key string, fn func() error) error
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	rdb *redis.Client
}

// NewClient connects to Redis at url (e.g. redis://localhost:6379/0).
func NewClient(url string) (Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid lock url", err)
	}
	return &redisClient{rdb: redis.NewClient(opts)}, nil
}

func (c *redisClient) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeLockUnavailable, "lock backend unreachable", err)
	}
	return nil
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

func (c *redisClient) Lock(ctx context.Context, key string, fn func() error) error {
	token, err := randomToken()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to generate lock token", err)
	}

	acquired, err := c.acquire(ctx, key, token)
	if err != nil {
		return err
	}
	if !acquired {
		return errors.New(errors.ErrCodeLockUnavailable, "could not acquire lock for "+key)
	}
	defer c.release(context.Background(), key, token)

	return fn()
}

func (c *redisClient) acquire(ctx context.Context, key, token string) (bool, error) {
	deadline := time.Now().Add(acquireTimeout)
	for {
		ok, err := c.rdb.SetNX(ctx, key, token, leaseTTL).Result()
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeLockUnavailable, "failed to acquire lock", err)
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(acquirePoll):
		}
	}
}

func (c *redisClient) release(ctx context.Context, key, token string) {
	c.rdb.Eval(ctx, releaseScript, []string{key}, token)
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
