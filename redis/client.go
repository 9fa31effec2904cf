// Package redis relays workflow run events through Redis pub/sub so that
// SSE subscribers connected to any paiflow instance see every run.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/paiflow/logger"
)

// Client is the pub/sub connection used by the relay.
type Client struct {
	rdb            *goredis.Client
	cfg            Config
	publishTimeout time.Duration
	closeOnce      sync.Once
	closeErr       error
}

// New creates a client. It does not dial; use Ping to check connectivity.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  mustDuration(cfg.DialTimeout),
		ReadTimeout:  mustDuration(cfg.ReadTimeout),
		WriteTimeout: mustDuration(cfg.WriteTimeout),
		// Socket deadlines follow the caller's context so a publish
		// deadline holds even against a server that never answers.
		ContextTimeoutEnabled: true,
	})

	log.Debug("redis client created", map[string]interface{}{"addr": cfg.Addr, "db": cfg.DB})
	return &Client{rdb: rdb, cfg: cfg, publishTimeout: mustDuration(cfg.PublishTimeout)}, nil
}

// Ping verifies the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Publish sends payload on channel. The call gives up after the configured
// publish timeout, including retries.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// PSubscribe subscribes to every channel matching pattern.
func (c *Client) PSubscribe(ctx context.Context, pattern string) *goredis.PubSub {
	return c.rdb.PSubscribe(ctx, pattern)
}

// Close releases the connection pool. Calling it twice is safe.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { c.closeErr = c.rdb.Close() })
	return c.closeErr
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
