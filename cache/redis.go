package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// RedisConfig holds connection parameters for the Redis cache.
type RedisConfig struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Redis stores entries with SET EX so Redis owns expiry.
type Redis struct {
	client rueidis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis connects a rueidis client.
func NewRedis(cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newRedisWithClient(client, cfg.KeyPrefix, logger), nil
}

func newRedisWithClient(client rueidis.Client, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	cmd := r.client.B().Get().Key(r.prefix + key).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			r.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	cmd := r.client.B().Set().Key(r.prefix + key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		r.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until Redis answers or timeout expires.
func (r *Redis) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := r.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (r *Redis) Close() {
	r.client.Close()
}
