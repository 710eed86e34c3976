package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redis when an address is configured. Returns nil when
// it isn't: the redis layer is a pure response cache and the service runs
// without it.
func NewRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		log.Println("REDIS_URL not set, response caching disabled")
		return nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("failed to parse REDIS_URL, response caching disabled: %v", err)
			return nil
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, response caching disabled: %v", err)
		return nil
	}
	log.Println("Connected to Redis")
	return client
}
