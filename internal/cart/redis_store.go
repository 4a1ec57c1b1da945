package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rakibhasan/dokan/internal/domain"
)

const (
	defaultKeyPrefix = "dokan:cart"
	defaultTTL       = 30 * 24 * time.Hour
)

// RedisStore хранит корзины в Redis как JSON-документы с TTL:
// брошенные корзины истекают сами, без отдельной очистки.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisOption настраивает RedisStore.
type RedisOption func(*RedisStore)

// WithTTL задаёт срок жизни корзины.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithKeyPrefix задаёт префикс ключей корзин.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// NewRedisStore создаёт хранилище корзин поверх готового клиента Redis.
func NewRedisStore(client *redis.Client, options ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ domain.CartStore = (*RedisStore)(nil)

// Load возвращает корзину или ErrCartNotFound.
func (s *RedisStore) Load(ctx context.Context, cartID string) (domain.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(cartID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return cart, nil
}

// Save перезаписывает корзину и продлевает её TTL.
func (s *RedisStore) Save(ctx context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	if err := s.client.Set(ctx, s.key(cart.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return nil
}

// Delete удаляет корзину; отсутствие ключа не считается ошибкой.
func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, s.key(cartID)).Err(); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}

func (s *RedisStore) key(cartID string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, cartID)
}
