// Package cache wraps the Redis client used for rate limiting and
// short-lived response caching.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects to Redis. The application keeps running without a cache
// when Redis is unreachable.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetClient returns the shared Redis client, or nil when Redis is unavailable.
func GetClient() *redis.Client {
	return Client
}

// Close releases the Redis connection if one was established.
func Close() {
	if Client != nil {
		if err := Client.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
		Client = nil
	}
}
