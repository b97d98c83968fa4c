package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status of a finished task
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Message is one queued task invocation, JSON encoded on the broker
type Message struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewMessage builds a message with a fresh id
func NewMessage(name string, args json.RawMessage) Message {
	return Message{
		ID:         uuid.NewString(),
		Name:       name,
		Args:       args,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Result is what the worker records for a message
type Result struct {
	TaskID     string          `json:"task_id"`
	Name       string          `json:"name"`
	Status     Status          `json:"status"`
	Value      json.RawMessage `json:"value,omitempty"`
	Error      string          `json:"error,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Decode unmarshals the result value into v
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.Value, v)
}
