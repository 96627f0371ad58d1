package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions holds the connection and queue parameters for a Redis
// list-backed consumer.
type RedisOptions struct {
	Host       string
	Port       int
	DB         int
	Password   string
	Queue      string
	PopTimeout time.Duration
}

// RedisConsumer pops work items off a Redis list with BLPOP. The broker's
// atomic pop guarantees each item is delivered to exactly one of any number
// of competing consumer processes.
type RedisConsumer struct {
	opts   RedisOptions
	client *redis.Client
	logger *zap.Logger
}

// NewRedisConsumer constructs a consumer for the configured queue. The
// connection is established lazily on first use; a broker that is down at
// startup surfaces as a pop failure and goes through the normal reconnect
// path instead of failing the process.
func NewRedisConsumer(opts RedisOptions, logger *zap.Logger) *RedisConsumer {
	c := &RedisConsumer{opts: opts, logger: logger}
	c.client = c.dial()
	return c
}

func (c *RedisConsumer) dial() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port)),
		DB:       c.opts.DB,
		Password: c.opts.Password,
	})
}

// Pop performs a blocking left-pop with the configured wait timeout.
func (c *RedisConsumer) Pop(ctx context.Context) (string, error) {
	res, err := c.client.BLPop(ctx, c.opts.PopTimeout, c.opts.Queue).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		if replyError(err) {
			return "", fmt.Errorf("blpop %s: %w", c.opts.Queue, err)
		}
		return "", fmt.Errorf("blpop %s: %w: %w", c.opts.Queue, ErrConnection, err)
	}
	// BLPOP replies [key, value].
	if len(res) < 2 {
		return "", ErrEmpty
	}
	return res[1], nil
}

// replyError reports whether err is a server reply such as WRONGTYPE, as
// opposed to a transport failure. go-redis models reply errors with the
// redis.Error interface.
func replyError(err error) bool {
	var reply redis.Error
	return errors.As(err, &reply)
}

// Reconnect discards the current client, dials a fresh one from the same
// parameters, and verifies it with a PING.
func (c *RedisConsumer) Reconnect(ctx context.Context) error {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("closing stale broker connection", zap.Error(err))
	}
	c.client = c.dial()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping after reconnect: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisConsumer) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
