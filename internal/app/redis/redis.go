package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"clientadmin/internal/app/config"

	"github.com/go-redis/redis/v8"
)

const (
	servicePrefix = "clientadmin."
	jwtPrefix     = "jwt."
)

// Client stores revoked admin tokens until they expire.
type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := &Client{cfg: cfg}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("cant ping redis: %w", err)
	}

	client.client = redisClient
	return client, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func getJWTKey(token string) string {
	return servicePrefix + jwtPrefix + token
}

// WriteJWTToBlacklist revokes token for ttl.
func (c *Client) WriteJWTToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, getJWTKey(token), true, ttl).Err()
}

// CheckJWTInBlacklist reports whether token was revoked.
func (c *Client) CheckJWTInBlacklist(ctx context.Context, token string) (bool, error) {
	err := c.client.Get(ctx, getJWTKey(token)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
