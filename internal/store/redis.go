package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies connectivity before
// returning.
func NewRedisClient(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// RedisTree stores one leaf document per Redis key, the key being the
// full tree path and the value its JSON encoding. Subtree operations
// scan by path prefix.
type RedisTree struct {
	rdb *redis.Client
}

func NewRedisTree(rdb *redis.Client) *RedisTree {
	return &RedisTree{rdb: rdb}
}

func (t *RedisTree) Get(ctx context.Context, path string, out any) error {
	raw, err := t.rdb.Get(ctx, path).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (t *RedisTree) Set(ctx context.Context, path string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := t.rdb.Set(ctx, path, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (t *RedisTree) Exists(ctx context.Context, path string) (bool, error) {
	n, err := t.rdb.Exists(ctx, path).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", path, err)
	}
	return n > 0, nil
}

func (t *RedisTree) ListSubtree(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	prefix := path + "/"
	keys, err := t.scanKeys(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	docs := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return docs, nil
	}

	vals, err := t.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Key vanished between SCAN and MGET.
			continue
		}
		docs[strings.TrimPrefix(keys[i], prefix)] = json.RawMessage(s)
	}
	return docs, nil
}

func (t *RedisTree) DeleteSubtree(ctx context.Context, path string) error {
	keys, err := t.scanKeys(ctx, path+"/*")
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	keys = append(keys, path)

	if err := t.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (t *RedisTree) scanKeys(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := t.rdb.Scan(ctx, 0, match, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
