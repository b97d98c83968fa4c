package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Built-in task names
const (
	TaskPing        = "ping"
	TaskHealthCheck = "health_check"
)

// HandlerFunc runs one task. The returned value is JSON encoded into the
// result.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Registry maps task names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// DefaultRegistry holds the built-in ping and health_check tasks
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(TaskPing, Ping)
	r.MustRegister(TaskHealthCheck, HealthCheck)
	return r
}

// Register adds a handler; names are unique
func (r *Registry) Register(name string, handler HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}
	r.handlers[name] = handler
	return nil
}

// MustRegister is like Register but panics on a duplicate
func (r *Registry) MustRegister(name string, handler HandlerFunc) {
	if err := r.Register(name, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the handler for name
func (r *Registry) Lookup(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[name]
	return handler, ok
}

// Names lists registered task names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ping answers "pong"
func Ping(ctx context.Context, args json.RawMessage) (interface{}, error) {
	return "pong", nil
}

// HealthCheck reports a fixed healthy status. It does not reach any node yet.
func HealthCheck(ctx context.Context, args json.RawMessage) (interface{}, error) {
	return map[string]string{"status": "healthy"}, nil
}
