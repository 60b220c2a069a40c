package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"chama-ledger/internal/config"
)

// OpenRedis connects and pings; the idempotency middleware needs a live store.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func FromConfig(cfg *config.Config) (*redis.Client, error) {
	return OpenRedis(cfg.RedisAddr, cfg.RedisDB)
}
