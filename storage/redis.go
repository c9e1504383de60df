package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/typedprefs"
)

// redisHashClient is the subset of *redis.Client used by RedisStorage.
type redisHashClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisStorage implements the Storage interface with one Redis hash per namespace.
// Each field holds a JSON record produced by typedprefs.MarshalPreference.
type RedisStorage struct {
	client redisHashClient
	hash   string
}

// NewRedisStorage connects to addr and stores values in the hash named namespace.
func NewRedisStorage(addr, password string, db int, namespace string) (*RedisStorage, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%w: redis: namespace is required", typedprefs.ErrInvalidInput)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &RedisStorage{client: client, hash: namespace}, nil
}

// Get retrieves a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *RedisStorage) Get(ctx context.Context, key string) (*typedprefs.Preference, error) {
	data, err := s.client.HGet(ctx, s.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, typedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get preference '%s': %w", key, err)
	}

	pref, err := typedprefs.UnmarshalPreference(data)
	if err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal value for key '%s': %w", key, err)
	}
	return pref, nil
}

// Set stores or updates a preference.
func (s *RedisStorage) Set(ctx context.Context, pref *typedprefs.Preference) error {
	data, err := typedprefs.MarshalPreference(pref)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal value for key '%s': %w", pref.Key, err)
	}

	if err := s.client.HSet(ctx, s.hash, pref.Key, data).Err(); err != nil {
		return fmt.Errorf("redis: failed to set preference '%s': %w", pref.Key, err)
	}
	return nil
}

// GetAll retrieves every preference in the namespace.
func (s *RedisStorage) GetAll(ctx context.Context) (map[string]*typedprefs.Preference, error) {
	fields, err := s.client.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get all preferences: %w", err)
	}

	prefs := make(map[string]*typedprefs.Preference, len(fields))
	for key, data := range fields {
		pref, err := typedprefs.UnmarshalPreference([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("redis: failed to unmarshal value for key '%s': %w", key, err)
		}
		prefs[key] = pref
	}
	return prefs, nil
}

// Delete removes a preference by key.
// It returns typedprefs.ErrNotFound if the preference does not exist.
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	n, err := s.client.HDel(ctx, s.hash, key).Result()
	if err != nil {
		return fmt.Errorf("redis: failed to delete preference '%s': %w", key, err)
	}
	if n == 0 {
		return typedprefs.ErrNotFound
	}
	return nil
}

// Clear removes the whole namespace hash.
func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.hash).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear preferences: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
