package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ticketing/user-service/internal/core/domain"
)

const defaultLockTTL = 10 * time.Second

// releaseScript deletes the lock only if it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UserLocker serialises mutations on a username across instances.
// Key format: lock:user:<username>
type UserLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewUserLocker creates a UserLocker. A non-positive ttl falls back to defaultLockTTL.
func NewUserLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *UserLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &UserLocker{client: client, ttl: ttl, log: log}
}

// Lock acquires the lease for username or returns domain.ErrUserLocked when
// another holder owns it. The lease expires after ttl even if never released.
func (l *UserLocker) Lock(ctx context.Context, username string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("user lock: %w", err)
	}

	key := lockKey(username)
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("user lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrUserLocked
	}

	return func() {
		// Released with a fresh context: the caller's may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn().Err(err).Str("username", username).Msg("failed to release user lock")
		}
	}, nil
}

func lockKey(username string) string {
	return "lock:user:" + username
}

// newToken identifies one lock acquisition so release never deletes a lease
// that expired and was taken by someone else.
func newToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
