package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Client enqueues tasks and reads their results
type Client struct {
	broker  Broker
	results ResultBackend
}

// NewClient creates a task client
func NewClient(broker Broker, results ResultBackend) *Client {
	return &Client{broker: broker, results: results}
}

// Send enqueues task name with args (may be nil) and returns its id
func (c *Client) Send(ctx context.Context, name string, args interface{}) (string, error) {
	var raw json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("failed to marshal task args: %w", err)
		}
		raw = data
	}

	msg := NewMessage(name, raw)
	if err := c.broker.Publish(ctx, msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// Result returns the stored result, or ErrResultNotFound
func (c *Client) Result(ctx context.Context, taskID string) (*Result, error) {
	return c.results.GetResult(ctx, taskID)
}

// Wait polls for the result of taskID until it appears or ctx is done
func (c *Client) Wait(ctx context.Context, taskID string, interval time.Duration) (*Result, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := c.results.GetResult(ctx, taskID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrResultNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}
