package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld is returned by release when the token no longer owns the key
var ErrLockNotHeld = errors.New("redis lock not held")

// Lock is a single-key mutual exclusion lock (SET NX PX + token release).
// 리더보드/시뮬레이터 read-modify-write 를 프로세스 간에 직렬화한다.
type Lock struct {
	client   *Client
	prefix   string
	ttl      time.Duration
	retry    time.Duration
	newToken func() string
}

// NewLock creates a lock helper; ttl bounds how long a crashed holder blocks others
func NewLock(client *Client, prefix string, ttl time.Duration) *Lock {
	return &Lock{
		client:   client,
		prefix:   prefix,
		ttl:      ttl,
		retry:    50 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// TryAcquire attempts to take the lock once.
// Returns the release func when acquired, nil otherwise.
func (l *Lock) TryAcquire(ctx context.Context, name string) (func(context.Context) error, error) {
	if !l.client.Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	key := fmt.Sprintf("%s:lock:%s", l.prefix, name)
	token := l.newToken()

	ok, err := l.client.Redis().SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	if !ok {
		return nil, nil
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client.Redis(), []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("unlock %s: %w", name, err)
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		return nil
	}, nil
}

// Acquire blocks until the lock is taken or ctx is done
func (l *Lock) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	for {
		release, err := l.TryAcquire(ctx, name)
		if err != nil {
			return nil, err
		}
		if release != nil {
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
