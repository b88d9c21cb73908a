package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const lockTTL = 10 * time.Minute

// releaseScript deletes the key only if we still own it, so an expired lock
// re-acquired by another node is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker is the advisory lock used when several service instances share
// one job database.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(ctx context.Context, redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLocker{client: client}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, userID int64) (func(), bool, error) {

	key := fmt.Sprintf("dedup:lock:%d", userID)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			log.Errorf("failed to release dedup lock for user %d: %v", userID, err)
		}
	}
	return release, true, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
