package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"foresight/pkg/logger"
)

// RedisTransport implements named message queues on Redis lists. Each queue
// is one list: LPUSH to send, RPOP to receive. A receive removes the
// message immediately, so delivery is at-least-once with no ordering
// guarantee toward the consumer and no redelivery after a crash mid-poll.
type RedisTransport struct {
	logger    *logger.Logger
	client    *redis.Client
	keyPrefix string
}

// TransportOption configures RedisTransport.
type TransportOption func(*RedisTransport)

// WithKeyPrefix sets a custom key prefix for queue lists.
func WithKeyPrefix(prefix string) TransportOption {
	return func(t *RedisTransport) {
		t.keyPrefix = prefix
	}
}

// NewRedisTransport creates a transport over an existing Redis client.
func NewRedisTransport(lgr *logger.Logger, client *redis.Client, opts ...TransportOption) *RedisTransport {
	t := &RedisTransport{
		logger:    lgr,
		client:    client,
		keyPrefix: "foresight:queue",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ping verifies the Redis connection.
func (t *RedisTransport) Ping(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// CreateOrGetQueue resolves a queue name to its URL. Creation is implicit
// in Redis, so this is idempotent by nature; the name is also tracked in a
// registry set for operational introspection.
func (t *RedisTransport) CreateOrGetQueue(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("queue name is required")
	}
	url := fmt.Sprintf("%s:%s", t.keyPrefix, name)
	if err := t.client.SAdd(ctx, t.registryKey(), url).Err(); err != nil {
		return "", fmt.Errorf("register queue %s: %w", name, err)
	}
	t.logger.Info("queue ready", logger.String("queue", url))
	return url, nil
}

// Send pushes one message onto the queue.
func (t *RedisTransport) Send(ctx context.Context, queueURL string, payload []byte) error {
	if err := t.client.LPush(ctx, queueURL, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", queueURL, err)
	}
	return nil
}

// Receive pops a single message with delete-on-receipt. ok is false when
// the queue is empty.
func (t *RedisTransport) Receive(ctx context.Context, queueURL string) ([]byte, bool, error) {
	b, err := t.client.RPop(ctx, queueURL).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("rpop %s: %w", queueURL, err)
	}
	return b, true, nil
}

// ApproximateCount returns the current queue depth.
func (t *RedisTransport) ApproximateCount(ctx context.Context, queueURL string) (int64, error) {
	n, err := t.client.LLen(ctx, queueURL).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", queueURL, err)
	}
	return n, nil
}

// Purge drops every pending message on the queue.
func (t *RedisTransport) Purge(ctx context.Context, queueURL string) error {
	if err := t.client.Del(ctx, queueURL).Err(); err != nil {
		return fmt.Errorf("del %s: %w", queueURL, err)
	}
	return nil
}

func (t *RedisTransport) registryKey() string {
	return fmt.Sprintf("%s:known", t.keyPrefix)
}
