package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so an
// expired lock re-acquired by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every gateway replica pointed at the same
// Redis instance.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

type RedisOption func(*Redis)

// WithTTL bounds how long a crashed holder can keep the lock.
func WithTTL(d time.Duration) RedisOption { return func(r *Redis) { r.ttl = d } }

func WithRetryInterval(d time.Duration) RedisOption { return func(r *Redis) { r.retry = d } }

func WithPrefix(p string) RedisOption { return func(r *Redis) { r.prefix = p } }

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "lock:",
		ttl:    15 * time.Second,
		retry:  50 * time.Millisecond,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Dial connects and pings; callers fall back to Local on error.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return c, nil
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if r.client == nil {
		return nil, errors.New("lock: nil redis client")
	}
	k := r.prefix + key
	token := uuid.NewString()

	t := time.NewTicker(r.retry)
	defer t.Stop()
	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// the request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, r.client, []string{k}, token).Err()
	}, nil
}
