package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feedshop-gateway/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	checkoutKeyPrefix = "checkout:"

	// checkoutPending marks a reserved idempotency key whose order id
	// is not known yet.
	checkoutPending = "__pending__"

	// Checkout reservations outlive any reasonable retry window but
	// not the session itself.
	checkoutTTL = 24 * time.Hour
)

// RedisStore persists sessions in redis with a TTL, the explicit
// replacement for the browser-local token storage of the original UI.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, token string) (*entity.Session, error) {
	sess := &entity.Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess entity.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *entity.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) ReserveCheckout(ctx context.Context, sessionID, key string) (string, bool, error) {
	redisKey := checkoutKey(sessionID, key)

	set, err := s.client.SetNX(ctx, redisKey, checkoutPending, checkoutTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to reserve checkout: %w", err)
	}
	if set {
		return "", true, nil
	}

	val, err := s.client.Get(ctx, redisKey).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to read checkout reservation: %w", err)
	}
	if val == checkoutPending {
		return "", false, ErrCheckoutInFlight
	}
	return val, false, nil
}

func (s *RedisStore) CompleteCheckout(ctx context.Context, sessionID, key, orderID string) error {
	if err := s.client.Set(ctx, checkoutKey(sessionID, key), orderID, checkoutTTL).Err(); err != nil {
		return fmt.Errorf("failed to record checkout: %w", err)
	}
	return nil
}

func (s *RedisStore) ReleaseCheckout(ctx context.Context, sessionID, key string) error {
	if err := s.client.Del(ctx, checkoutKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("failed to release checkout: %w", err)
	}
	return nil
}

func checkoutKey(sessionID, key string) string {
	return checkoutKeyPrefix + sessionID + ":" + key
}
