// Package messaging carries committed profile events to their consumers: an
// in-memory event bus inside the process and a NATS relay to the outside.
package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus dispatches events to subscribed handlers, either inline or
// on a bounded worker pool. Handler errors and panics are logged and counted;
// they never reach the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	closed      bool

	asyncMode  bool
	workerPool chan struct{}
	closeCh    chan struct{}
	wg         sync.WaitGroup

	logger  *zap.Logger
	metrics *EventBusMetrics
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs handlers on the worker pool instead of the publisher's goroutine.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent handler executions in async mode.
	WorkerPoolSize int

	Logger *zap.Logger
}

// DefaultInMemoryEventBusConfig returns async mode with 10 workers.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		closeCh:    make(chan struct{}),
		logger:     config.Logger.With(zap.String("component", "event_bus")),
		metrics:    NewEventBusMetrics(),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", zap.String("event_type", string(eventType)))
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish sends an event to all subscribed handlers.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)

	// Add under the read lock so Close cannot start waiting before these run.
	if b.asyncMode {
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	b.metrics.RecordPublish(event.EventType())

	for _, handler := range handlers {
		if b.asyncMode {
			go b.executeAsync(event, handler)
			continue
		}
		b.execute(event, handler)
	}
	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	defer b.wg.Done()

	select {
	case b.workerPool <- struct{}{}:
		defer func() { <-b.workerPool }()
	case <-b.closeCh:
		b.metrics.RecordDropped(event.EventType())
		return
	}
	b.execute(event, handler)
}

func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	err := b.safeCall(event, handler)
	duration := time.Since(start)

	b.metrics.RecordHandlerExecution(event.EventType(), duration, err == nil)
	if err != nil {
		b.logger.Error("event handler failed",
			zap.String("event_type", string(event.EventType())),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
}

func (b *InMemoryEventBus) safeCall(event shared.Event, handler shared.EventHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(event)
}

// Close stops accepting events and waits for running handlers. Async handlers
// still waiting for a worker slot are dropped.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}

// Metrics returns the bus metrics.
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics tracks event bus throughput and handler outcomes.
type EventBusMetrics struct {
	mu sync.RWMutex

	published            map[shared.EventType]int64
	dropped              int64
	handlerExecutions    int64
	handlerFailures      int64
	handlerTotalDuration time.Duration
	since                time.Time
}

// NewEventBusMetrics creates an empty metrics tracker.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{
		published: make(map[shared.EventType]int64),
		since:     time.Now(),
	}
}

// RecordPublish records a published event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	m.published[eventType]++
	m.mu.Unlock()
}

// RecordDropped records a handler skipped because the bus closed.
func (m *EventBusMetrics) RecordDropped(shared.EventType) {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

// RecordHandlerExecution records one handler run.
func (m *EventBusMetrics) RecordHandlerExecution(_ shared.EventType, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlerExecutions++
	m.handlerTotalDuration += duration
	if !success {
		m.handlerFailures++
	}
}

// Snapshot returns a copy of the current metrics.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := EventBusMetricsSnapshot{
		PublishedByType:    make(map[shared.EventType]int64, len(m.published)),
		Dropped:            m.dropped,
		HandlerExecutions:  m.handlerExecutions,
		HandlerFailures:    m.handlerFailures,
		HandlerSuccessRate: 1.0,
		Since:              m.since,
	}
	for t, n := range m.published {
		s.PublishedByType[t] = n
		s.TotalPublished += n
	}
	if m.handlerExecutions > 0 {
		s.AverageHandlerDuration = m.handlerTotalDuration / time.Duration(m.handlerExecutions)
		s.HandlerSuccessRate = float64(m.handlerExecutions-m.handlerFailures) / float64(m.handlerExecutions)
	}
	return s
}

// EventBusMetricsSnapshot is a point-in-time view of the metrics.
type EventBusMetricsSnapshot struct {
	TotalPublished         int64                      `json:"totalPublished"`
	PublishedByType        map[shared.EventType]int64 `json:"publishedByType"`
	Dropped                int64                      `json:"dropped"`
	HandlerExecutions      int64                      `json:"handlerExecutions"`
	HandlerFailures        int64                      `json:"handlerFailures"`
	HandlerSuccessRate     float64                    `json:"handlerSuccessRate"`
	AverageHandlerDuration time.Duration              `json:"averageHandlerDuration"`
	Since                  time.Time                  `json:"since"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("handler panicked")
)
