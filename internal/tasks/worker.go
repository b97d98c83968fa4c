package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultPollTimeout = 5 * time.Second

// Observer is notified of every finished task
type Observer interface {
	ObserveTask(name, status string)
}

// Worker consumes messages from a broker and records results
type Worker struct {
	broker      Broker
	results     ResultBackend
	registry    *Registry
	observer    Observer
	logger      *logrus.Entry
	concurrency int
	pollTimeout time.Duration
	now         func() time.Time
}

// Config holds the configuration for the task worker
type Config struct {
	Broker      Broker
	Results     ResultBackend
	Registry    *Registry
	Observer    Observer
	Logger      *logrus.Entry
	Concurrency int
	PollTimeout time.Duration
}

// NewWorker creates a new task worker
func NewWorker(cfg *Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Worker{
		broker:      cfg.Broker,
		results:     cfg.Results,
		registry:    registry,
		observer:    cfg.Observer,
		logger:      logger.WithField("component", "task-worker"),
		concurrency: concurrency,
		pollTimeout: pollTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run consumes until ctx is cancelled, then waits for in-flight tasks
func (w *Worker) Run(ctx context.Context) error {
	w.logger.WithFields(logrus.Fields{
		"concurrency": w.concurrency,
		"tasks":       w.registry.Names(),
	}).Info("Starting task worker...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, w.concurrency)

	defer func() {
		wg.Wait()
		w.logger.Info("Stopped task worker")
	}()

	for {
		// take a slot before consuming so nothing is popped without a runner
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			return nil
		}

		msg, err := w.broker.Consume(ctx, w.pollTimeout)
		if err != nil {
			<-semaphore
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Errorf("Failed to consume task: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if msg == nil {
			<-semaphore
			continue
		}

		wg.Add(1)
		go func(m Message) {
			defer wg.Done()
			defer func() { <-semaphore }()
			w.process(ctx, m)
		}(*msg)
	}
}

// process executes a single message and stores its result
func (w *Worker) process(ctx context.Context, msg Message) {
	logger := w.logger.WithFields(logrus.Fields{
		"task_id": msg.ID,
		"task":    msg.Name,
	})

	result := w.execute(ctx, msg)
	if result.Status == StatusFailure {
		logger.Warnf("Task failed: %s", result.Error)
	} else {
		logger.Debug("Task succeeded")
	}

	// the result is stored even when ctx is cancelled mid-shutdown
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.results.StoreResult(storeCtx, result); err != nil {
		logger.Errorf("Failed to store task result: %v", err)
	}

	if w.observer != nil {
		w.observer.ObserveTask(msg.Name, string(result.Status))
	}
}

func (w *Worker) execute(ctx context.Context, msg Message) (result Result) {
	result = Result{
		TaskID: msg.ID,
		Name:   msg.Name,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailure
			result.Value = nil
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.FinishedAt = w.now()
	}()

	handler, ok := w.registry.Lookup(msg.Name)
	if !ok {
		result.Status = StatusFailure
		result.Error = fmt.Sprintf("unknown task %q", msg.Name)
		return result
	}

	value, err := handler(ctx, msg.Args)
	if err != nil {
		result.Status = StatusFailure
		result.Error = err.Error()
		return result
	}

	data, err := json.Marshal(value)
	if err != nil {
		result.Status = StatusFailure
		result.Error = fmt.Sprintf("failed to marshal task value: %v", err)
		return result
	}

	result.Status = StatusSuccess
	result.Value = data
	return result
}

// ErrNoResultBackend is returned by RunOnce when the worker has no backend
var ErrNoResultBackend = errors.New("no result backend configured")

// RunOnce consumes and processes at most one message. It reports whether
// a message was handled.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	if w.results == nil {
		return false, ErrNoResultBackend
	}

	msg, err := w.broker.Consume(ctx, w.pollTimeout)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	w.process(ctx, *msg)
	return true, nil
}
