package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/predictarena/pkg/redis"
)

// Lock names for the read-modify-write documents
const (
	LockLeaderboard = "leaderboard"
	LockSimulator   = "simulator"
)

// LockIngest names the lock held for one date's whole ingest run
func LockIngest(day string) string { return "ingest:" + day }

// LockScores names the lock held for one date's whole scoring run.
// 순서: LockScores(day) -> LockLeaderboard (역순으로 잡지 말 것)
func LockScores(day string) string { return "scores:" + day }

// Release gives a lock back
type Release func(ctx context.Context) error

// Locker serializes read-modify-write cycles on shared documents
type Locker interface {
	Lock(ctx context.Context, name string) (Release, error)
}

// =============================================================================
// LocalLocker (in-process)
// =============================================================================

// LocalLocker is a per-name mutex that honours context cancellation
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[name] = ch
	}
	return ch
}

// Lock blocks until name is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, name string) (Release, error) {
	ch := l.slot(name)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %w", name, ctx.Err())
	}
}

// =============================================================================
// RedisLocker (cross-process)
// =============================================================================

// RedisLocker wraps a Redis SET NX lock
type RedisLocker struct {
	lock *redis.Lock
}

// NewRedisLocker creates a cross-process locker
func NewRedisLocker(lock *redis.Lock) *RedisLocker {
	return &RedisLocker{lock: lock}
}

// Lock blocks until the Redis lock is acquired or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, name string) (Release, error) {
	release, err := l.lock.Acquire(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	return Release(release), nil
}

// =============================================================================
// PostgresLocker (session advisory lock)
// =============================================================================

// PostgresLocker holds a session-level advisory lock on a dedicated connection
type PostgresLocker struct {
	db *pgxpool.Pool
}

// NewPostgresLocker creates a locker over the document database
func NewPostgresLocker(db *pgxpool.Pool) *PostgresLocker {
	return &PostgresLocker{db: db}
}

// Lock blocks in pg_advisory_lock until acquired or ctx is done
func (l *PostgresLocker) Lock(ctx context.Context, name string) (Release, error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock %s: acquire conn: %w", name, err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, "arena:"+name); err != nil {
		conn.Release()
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var unlockErr error
		once.Do(func() {
			defer conn.Release()
			if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, "arena:"+name); err != nil {
				unlockErr = fmt.Errorf("unlock %s: %w", name, err)
			}
		})
		return unlockErr
	}, nil
}
