package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-training/mtd-vat/pkg/core"

	"github.com/redis/rueidis"
)

// Key prefix for Redis storage
const tokenPrefix = "access_token:"

// RedisStore implements core.TokenStore using Redis via rueidis.
type RedisStore struct {
	client rueidis.Client
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	return NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	})
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// Write stores token under key without expiry.
func (r *RedisStore) Write(ctx context.Context, key string, token *core.Token) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if token == nil {
		return ErrNilToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	cmd := r.client.B().Set().Key(tokenPrefix + key).Value(string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return &core.CacheError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Read returns the token stored under key, or nil if the key does not exist.
func (r *RedisStore) Read(ctx context.Context, key string) (*core.Token, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	cmd := r.client.B().Get().Key(tokenPrefix + key).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &core.CacheError{Op: "read", Key: key, Err: err}
	}

	var token core.Token
	if err := json.Unmarshal([]byte(result), &token); err != nil {
		return nil, &core.DecodeError{Source: "redis key " + tokenPrefix + key, Err: err}
	}
	return &token, nil
}

// Delete removes the token stored under key. Missing keys are not an error.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	cmd := r.client.B().Del().Key(tokenPrefix + key).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return &core.CacheError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
