package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/tradecart/cart-service/pkg/cartapi"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL     = 30 * 24 * time.Hour
	maxCASAttempts = 8
)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Get(ctx context.Context, userID string) (cartapi.Cart, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	cart := make(cartapi.Cart, len(fields))
	for productID, value := range fields {
		if lines := cartapi.ParseLines(productID, []byte(value)); len(lines) > 0 {
			cart[productID] = lines
		}
	}
	return cart, nil
}

func (r *RedisStore) Add(ctx context.Context, userID string, line cartapi.CartLine) (cartapi.CartLine, error) {
	if line.Quantity <= 0 {
		return cartapi.CartLine{}, ErrInvalidQuantity
	}

	var result cartapi.CartLine
	err := r.mutate(ctx, userID, line.ProductID, func(lines []cartapi.CartLine, _ bool) ([]cartapi.CartLine, error) {
		for i := range lines {
			if lines[i].Matches(line.Key()) {
				lines[i].Quantity += line.Quantity
				result = lines[i]
				return lines, nil
			}
		}
		result = line
		return append(lines, line), nil
	})
	if err != nil {
		return cartapi.CartLine{}, err
	}
	return result, nil
}

func (r *RedisStore) Update(ctx context.Context, userID, productID string, key cartapi.Key, quantity int) (*cartapi.CartLine, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}

	var result *cartapi.CartLine
	err := r.mutate(ctx, userID, productID, func(lines []cartapi.CartLine, exists bool) ([]cartapi.CartLine, error) {
		if !exists {
			return nil, ErrProductNotInCart
		}
		i := indexOf(lines, key)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		if quantity == 0 {
			result = nil
			return append(lines[:i], lines[i+1:]...), nil
		}
		lines[i].Quantity = quantity
		updated := lines[i]
		result = &updated
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RedisStore) Remove(ctx context.Context, userID, productID string, key cartapi.Key) error {
	return r.mutate(ctx, userID, productID, func(lines []cartapi.CartLine, exists bool) ([]cartapi.CartLine, error) {
		if !exists {
			return nil, ErrProductNotInCart
		}
		i := indexOf(lines, key)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		return append(lines[:i], lines[i+1:]...), nil
	})
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

type mutation func(lines []cartapi.CartLine, exists bool) ([]cartapi.CartLine, error)

// mutate runs a read-modify-write of one product field under WATCH on the
// cart key, retrying when another writer got there first.
func (r *RedisStore) mutate(ctx context.Context, userID, productID string, fn mutation) error {
	key := cartKey(userID)

	txf := func(tx *redis.Tx) error {
		var lines []cartapi.CartLine
		exists := true
		data, err := tx.HGet(ctx, key, productID).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			exists = false
		case err != nil:
			return fmt.Errorf("redis hget failed: %w", err)
		default:
			lines = cartapi.ParseLines(productID, data)
		}

		next, err := fn(lines, exists)
		if err != nil {
			return err
		}

		var encoded []byte
		if len(next) > 0 {
			if encoded, err = json.Marshal(next); err != nil {
				return fmt.Errorf("marshal cart lines failed: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.HDel(ctx, key, productID)
				return nil
			}
			pipe.HSet(ctx, key, productID, encoded)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func indexOf(lines []cartapi.CartLine, key cartapi.Key) int {
	for i := range lines {
		if lines[i].Matches(key) {
			return i
		}
	}
	return -1
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
