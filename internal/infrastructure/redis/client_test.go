package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-stay-reservation/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		client.Close()
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}
