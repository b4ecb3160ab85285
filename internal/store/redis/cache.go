// Package redis caches fetched candle windows and publishes trade events.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"papertrading-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	defaultWindowTTL  = 5 * time.Minute
	tradeEventChannel = "papertrade:trades"
)

// Cache is a read-through candle-window cache backed by Redis. It wraps a
// CandleSource so repeated fetches inside one window TTL hit the cache, and
// it publishes trade events for external observers.
type Cache struct {
	client *goredis.Client
	source model.CandleSource
	ttl    time.Duration
}

// Config configures the Redis cache.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // window TTL, default 5m
}

// New connects to Redis and wraps source with the cache. Pings the server
// so a misconfigured address fails at startup, not mid-tick.
func New(cfg Config, source model.CandleSource) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultWindowTTL
	}

	slog.Info("connected to redis", "addr", cfg.Addr)
	return &Cache{client: client, source: source, ttl: ttl}, nil
}

func windowKey(ticker, interval, rangeSpec string) string {
	return "papertrade:window:" + ticker + ":" + interval + ":" + rangeSpec
}

// Fetch returns the cached window when fresh, otherwise delegates to the
// wrapped source and caches the result. Cache failures degrade to a direct
// fetch; they never fail the tick.
func (c *Cache) Fetch(ctx context.Context, ticker, interval, rangeSpec string) ([]model.Candle, error) {
	key := windowKey(ticker, interval, rangeSpec)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var candles []model.Candle
		if err := json.Unmarshal(data, &candles); err == nil && len(candles) > 0 {
			return candles, nil
		}
	} else if err != goredis.Nil {
		slog.Warn("redis cache read failed", "key", key, "err", err)
	}

	candles, err := c.source.Fetch(ctx, ticker, interval, rangeSpec)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(candles); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("redis cache write failed", "key", key, "err", err)
		}
	}
	return candles, nil
}

// PublishTrade emits a trade record on the trade-event channel.
func (c *Cache) PublishTrade(ctx context.Context, rec model.TradeRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.client.Publish(ctx, tradeEventChannel, data).Err(); err != nil {
		slog.Warn("redis trade publish failed", "err", err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
