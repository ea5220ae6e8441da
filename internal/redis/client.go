package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection for nonce-claim and rate-limiting
// operations.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the
// connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromAddr creates a client against a bare host:port, used by
// tests running against miniredis.
func NewClientFromAddr(addr string) *Client {
	return &Client{rdb: goredis.NewClient(&goredis.Options{Addr: addr})}
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

const noncePrefix = "nonce:"

// ClaimNonce atomically claims a dedup nonce scoped to an author.
// Returns true when this caller won the claim; false when the nonce was
// already claimed. SET NX makes the check-and-set a single atomic
// operation, so exactly one of any number of concurrent callers
// succeeds.
func (c *Client) ClaimNonce(ctx context.Context, authorID int64, nonce string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("%s%d:%s", noncePrefix, authorID, nonce)
	ok, err := c.rdb.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming nonce: %w", err)
	}
	return ok, nil
}

// Publish sends a message to a pub/sub channel.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// rateLimitScript atomically increments a counter and sets its TTL on
// first use.
var rateLimitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// CheckRateLimit returns true if the request is allowed, false if rate
// limited. Uses an atomic INCR + PEXPIRE Lua script for a fixed-window
// counter.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := rateLimitScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("checking rate limit: %w", err)
	}
	return count <= int64(limit), nil
}
