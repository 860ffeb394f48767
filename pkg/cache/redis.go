package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis at addr. Redis is an optional accelerator
// here (room directory cache), so on an empty addr or a failed ping the
// function returns nil and callers run uncached.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[Redis] ping %s failed, running without cache: %v", addr, err)
		return nil
	}
	return client
}
