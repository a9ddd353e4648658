// Package cache archives inbound audio and recent log lines in redis.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "dex-interview-service:"
	audioPrefix = keyPrefix + "audio:"
)

// DB is the redis backed archive.
type DB struct {
	rdb *redis.Client
}

var _ interfaces.AudioArchive = (*DB)(nil)

// New connects to redis. It returns nil, nil when no address is configured.
func New(ctx context.Context, cfg config.CacheConfig) (*DB, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.rdb.Ping(ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}

// SaveAudio stores a payload under the audio prefix. It expires after ttl.
func (db *DB) SaveAudio(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return db.rdb.Set(ctx, audioPrefix+key, data, ttl).Err()
}

// LoadAudio returns a previously archived payload.
func (db *DB) LoadAudio(ctx context.Context, key string) ([]byte, error) {
	data, err := db.rdb.Get(ctx, audioPrefix+key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("could not load audio %s: %w", key, err)
	}
	return data, nil
}

// AudioKeys lists the keys of all archived payloads, without the prefix.
func (db *DB) AudioKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := db.rdb.Scan(ctx, 0, audioPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), audioPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// CleanAllAudio finds and deletes all audio entries from the cache.
func (db *DB) CleanAllAudio(ctx context.Context) (int64, error) {
	keys, err := db.AudioKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	for i, key := range keys {
		keys[i] = audioPrefix + key
	}
	return db.rdb.Del(ctx, keys...).Result()
}
