package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-ops/internal/domain"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// saveCartScript writes ARGV[1] only while the stored cart is at version
// ARGV[2]. Version 0 means the key must be absent.
var saveCartScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
local stored = 0
if current then
	stored = cjson.decode(current).version
end
if stored ~= tonumber(ARGV[2]) then
	return stored
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return -1
`)

// CartStore keeps storefront carts as JSON documents that expire after ttl
// of inactivity.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func (s *CartStore) Get(ctx context.Context, establishmentID, id string) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(establishmentID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &cart, nil
}

// Save writes the cart and refreshes its expiry if the stored cart is still
// at expectedVersion.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	stored, err := saveCartScript.Run(ctx, s.client, []string{cartKey(cart.EstablishmentID, cart.ID)},
		raw, expectedVersion, s.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	if stored >= 0 {
		return fmt.Errorf("cart %s is at version %d, not %d: %w", cart.ID, stored, expectedVersion, domain.ErrConflict)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, establishmentID, id string) error {
	n, err := s.client.Del(ctx, cartKey(establishmentID, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func cartKey(establishmentID, id string) string {
	return cartKeyPrefix + establishmentID + ":" + id
}
