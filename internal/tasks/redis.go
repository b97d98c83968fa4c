package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultQueueKey     = "watchtower:tasks"
	defaultResultPrefix = "watchtower:result:"
)

// NewRedisClient connects to the redis server at url
// (redis://[:password@]host:port/db) and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisBroker queues messages on a redis list
type RedisBroker struct {
	rdb *redis.Client
	key string
}

// NewRedisBroker creates a broker on the default queue key
func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb, key: defaultQueueKey}
}

// Publish pushes msg onto the head of the list
func (b *RedisBroker) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal task message: %w", err)
	}

	if err := b.rdb.LPush(ctx, b.key, data).Err(); err != nil {
		return fmt.Errorf("failed to publish task %s: %w", msg.ID, err)
	}
	return nil
}

// Consume pops from the tail of the list, so delivery is FIFO
func (b *RedisBroker) Consume(ctx context.Context, timeout time.Duration) (*Message, error) {
	values, err := b.rdb.BRPop(ctx, timeout, b.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume task: %w", err)
	}

	// BRPOP replies with [key, value]
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(values))
	}

	var msg Message
	if err := json.Unmarshal([]byte(values[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task message: %w", err)
	}
	return &msg, nil
}

// RedisResultBackend stores results as JSON strings with a TTL
type RedisResultBackend struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisResultBackend creates a result backend; ttl <= 0 keeps results forever
func NewRedisResultBackend(rdb *redis.Client, ttl time.Duration) *RedisResultBackend {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisResultBackend{rdb: rdb, prefix: defaultResultPrefix, ttl: ttl}
}

// StoreResult writes result under its task id
func (b *RedisResultBackend) StoreResult(ctx context.Context, result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}

	if err := b.rdb.Set(ctx, b.prefix+result.TaskID, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result of task %s: %w", result.TaskID, err)
	}
	return nil
}

// GetResult reads the result of taskID
func (b *RedisResultBackend) GetResult(ctx context.Context, taskID string) (*Result, error) {
	data, err := b.rdb.Get(ctx, b.prefix+taskID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result of task %s: %w", taskID, err)
	}

	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
	}
	return &result, nil
}
