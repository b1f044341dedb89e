package repository

import (
	"context"
	"encoding/json"

	"delipos/internal/checkout"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// redisCartStore is the write-through persistence for in-progress carts.
// Saving an empty cart deletes the key, so a fresh register and a cleared
// cart are indistinguishable on reload.
type redisCartStore struct{ rdb *redis.Client }

func NewCartStore(rdb *redis.Client) checkout.CartStore { return &redisCartStore{rdb: rdb} }

func (s *redisCartStore) Load(ctx context.Context, storeID string) ([]checkout.Line, error) {
	raw, err := s.rdb.Get(ctx, cartKeyPrefix+storeID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []checkout.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *redisCartStore) Save(ctx context.Context, storeID string, lines []checkout.Line) error {
	if len(lines) == 0 {
		return s.Clear(ctx, storeID)
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKeyPrefix+storeID, data, 0).Err()
}

func (s *redisCartStore) Clear(ctx context.Context, storeID string) error {
	return s.rdb.Del(ctx, cartKeyPrefix+storeID).Err()
}
