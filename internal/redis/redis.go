package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write to redis")
	}
}

// MarkAlive records a device heartbeat with a TTL; the dashboard reads the
// key's presence as "online". Quietly skips when redis isn't configured —
// liveness display is optional, heartbeats must never fail the request.
func MarkAlive(ctx context.Context, screenCode string, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	Set(ctx, fmt.Sprintf("lastping:%s", screenCode), time.Now().UTC().Format(time.RFC3339), ttl)
}
