package tasks

import (
	"context"
	"sync"
	"time"
)

// memoryBroker is a channel-backed Broker for tests
type memoryBroker struct {
	queue chan Message
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{queue: make(chan Message, 64)}
}

func (b *memoryBroker) Publish(ctx context.Context, msg Message) error {
	select {
	case b.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *memoryBroker) Consume(ctx context.Context, timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-b.queue:
		return &msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// memoryResults is a map-backed ResultBackend for tests
type memoryResults struct {
	mu      sync.Mutex
	results map[string]Result
}

func newMemoryResults() *memoryResults {
	return &memoryResults{results: make(map[string]Result)}
}

func (b *memoryResults) StoreResult(ctx context.Context, result Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[result.TaskID] = result
	return nil
}

func (b *memoryResults) GetResult(ctx context.Context, taskID string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	result, ok := b.results[taskID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return &result, nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveTask(name, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[string]int)
	}
	o.counts[name+"/"+status]++
}

func (o *countingObserver) get(key string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[key]
}
