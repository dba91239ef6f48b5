package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the busy flag only while it still names the releasing
// action, so an expired flag re-acquired by another action is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares sessions and busy flags between server instances.
type RedisStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	busyTTL time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl, busyTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, busyTTL: busyTTL}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	if sess.Draft.Documents == nil {
		sess.Draft.Documents = DocumentSet{}
	}
	return &sess, nil
}

func (r *RedisStore) Save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(sess.ID), payload, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id), busyKey(id)).Err()
}

func (r *RedisStore) AcquireBusy(ctx context.Context, id string, action Action) (bool, error) {
	return r.client.SetNX(ctx, busyKey(id), string(action), r.busyTTL).Result()
}

func (r *RedisStore) ReleaseBusy(ctx context.Context, id string, action Action) error {
	return releaseScript.Run(ctx, r.client, []string{busyKey(id)}, string(action)).Err()
}

func (r *RedisStore) InFlight(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, busyKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
