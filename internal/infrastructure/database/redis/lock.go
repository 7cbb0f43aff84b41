package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeValidation, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeValidation, "lock not held by this owner")
)

// ProjectLock serializes analysis runs for one project across workers. Only
// the holder that set the lock value can release or extend it.
type ProjectLock interface {
	Lock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) (bool, error)
}

type LockOption func(*lockConfig)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

func WithRetryDelay(delay time.Duration) LockOption {
	return func(c *lockConfig) { c.retryDelay = delay }
}

func WithRetryCount(count int) LockOption {
	return func(c *lockConfig) { c.retryCount = count }
}

type lockConfig struct {
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
}

type LockFactory struct {
	client *Client
	logger logging.Logger
	prefix string
}

func NewLockFactory(client *Client, log logging.Logger, prefix string) *LockFactory {
	if prefix == "" {
		prefix = "gapintel:"
	}
	return &LockFactory{client: client, logger: log, prefix: prefix}
}

// ForProject returns the rematch lock for one project.
func (f *LockFactory) ForProject(projectID string, opts ...LockOption) ProjectLock {
	cfg := lockConfig{
		ttl:        2 * time.Minute,
		retryDelay: 250 * time.Millisecond,
		retryCount: 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &projectLock{
		client: f.client,
		key:    f.prefix + "lock:project:" + projectID,
		value:  uuid.New().String(),
		config: cfg,
		logger: f.logger,
	}
}

type projectLock struct {
	client *Client
	key    string
	value  string
	config lockConfig
	logger logging.Logger
}

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

func (l *projectLock) Lock(ctx context.Context) error {
	for i := 0; i < l.config.retryCount; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.config.retryDelay):
		}
	}
	return ErrLockNotAcquired
}

func (l *projectLock) TryLock(ctx context.Context) (bool, error) {
	if l.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := l.client.rdb.SetNX(ctx, l.key, l.value, l.config.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	return ok, nil
}

func (l *projectLock) Unlock(ctx context.Context) error {
	if l.client.isClosed() {
		return ErrClientClosed
	}
	res, err := unlockScript.Run(ctx, l.client.rdb, []string{l.key}, l.value).Result()
	if err != nil {
		return err
	}
	if res.(int64) == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func (l *projectLock) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	if l.client.isClosed() {
		return false, ErrClientClosed
	}
	res, err := extendScript.Run(ctx, l.client.rdb, []string{l.key}, l.value, ttl.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	return res.(int64) == 1, nil
}
