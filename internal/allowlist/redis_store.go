// Package allowlist provides the per-guild set of recognized vehicle
// names, backed by Redis.
package allowlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mcmetrics/bot/internal/platform"
)

// RedisStore keeps each guild's allow-list in a Redis set. Mutations go
// through SADD, so a concurrent union from another resolution cannot lose
// updates.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed allow-list store.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "allowed:",
	}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "allowed:"}
}

func (s *RedisStore) key(guildID platform.Snowflake) string {
	return s.prefix + guildID.String()
}

// Normalize is the canonical form of a vehicle name on the allow-list.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Read returns the guild's allow-list, sorted.
func (s *RedisStore) Read(ctx context.Context, guildID platform.Snowflake) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.key(guildID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read allow-list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Add unions names into the guild's allow-list. Names are normalized and
// de-duplicated by the set semantics.
func (s *RedisStore) Add(ctx context.Context, guildID platform.Snowflake, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]any, 0, len(names))
	for _, name := range names {
		if normalized := Normalize(name); normalized != "" {
			members = append(members, normalized)
		}
	}
	if len(members) == 0 {
		return nil
	}
	if err := s.client.SAdd(ctx, s.key(guildID), members...).Err(); err != nil {
		return fmt.Errorf("add to allow-list: %w", err)
	}
	return nil
}

// Contains reports whether a name is on the guild's allow-list.
func (s *RedisStore) Contains(ctx context.Context, guildID platform.Snowflake, name string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(guildID), Normalize(name)).Result()
	if err != nil {
		return false, fmt.Errorf("check allow-list: %w", err)
	}
	return ok, nil
}

// Replace overwrites the guild's allow-list wholesale.
func (s *RedisStore) Replace(ctx context.Context, guildID platform.Snowflake, names []string) error {
	members := make([]any, 0, len(names))
	for _, name := range names {
		if normalized := Normalize(name); normalized != "" {
			members = append(members, normalized)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(guildID))
	if len(members) > 0 {
		pipe.SAdd(ctx, s.key(guildID), members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace allow-list: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
