package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ BookListSlot = (*redisListSlot)(nil)

type redisListSlot struct {
	logger *zap.Logger
	client *redis.Client
	key    string
}

// NewRedisListSlot provides a redis-based slot storing the list under key.
func NewRedisListSlot(logger *zap.Logger, client *redis.Client, key string) BookListSlot {
	return &redisListSlot{
		logger: logger,
		client: client,
		key:    key,
	}
}

// GetRedisClient provides a ready to use redis client. The client is
// closed and nil is returned when the server does not answer the ping.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Read fetches the saved list.
func (rs *redisListSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	return data, err
}

// Write replaces the saved list. The key never expires.
func (rs *redisListSlot) Write(ctx context.Context, data []byte) error {
	return rs.client.Set(ctx, rs.key, data, 0).Err()
}

// Close releases the redis connections pool.
func (rs *redisListSlot) Close() error {
	return rs.client.Close()
}
