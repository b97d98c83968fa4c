package tasks

import (
	"context"
	"errors"
	"time"
)

// ErrResultNotFound is returned when no result has been stored for an id
var ErrResultNotFound = errors.New("task result not found")

// Broker carries messages from producers to workers
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	// Consume blocks up to timeout for one message. It returns nil, nil
	// when the timeout elapses without a message.
	Consume(ctx context.Context, timeout time.Duration) (*Message, error)
}

// ResultBackend stores task results keyed by task id
type ResultBackend interface {
	StoreResult(ctx context.Context, result Result) error
	GetResult(ctx context.Context, taskID string) (*Result, error)
}
