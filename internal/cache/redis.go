package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects the package-level client. Accepts a bare host:port or
// a redis:// URL; an empty value falls back to the local default so dev
// setups work without configuration.
func InitRedis(ctx context.Context, addr string) {
	opts := &redis.Options{Addr: "localhost:6379"}
	switch {
	case strings.HasPrefix(addr, "redis://"), strings.HasPrefix(addr, "rediss://"):
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		opts = parsed
	case addr != "":
		opts.Addr = addr
	}

	Client = redis.NewClient(opts)
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
}
