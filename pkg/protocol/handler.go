package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aderemi/folionav/pkg/logging"
)

// Common handler errors.
var (
	ErrHandlerNotFound = errors.New("handler not found for event")
	ErrHandlerPanic    = errors.New("handler panicked")
)

// MessageHandler processes protocol messages.
type MessageHandler interface {
	// HandleMessage processes a message and returns an optional reply.
	HandleMessage(ctx context.Context, msg *Message) (*Message, error)
}

// MessageHandlerFunc is an adapter to allow functions as MessageHandler.
type MessageHandlerFunc func(ctx context.Context, msg *Message) (*Message, error)

// HandleMessage implements MessageHandler.
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, msg *Message) (*Message, error) {
	return f(ctx, msg)
}

// MiddlewareFunc is middleware that wraps message handling.
type MiddlewareFunc func(next MessageHandler) MessageHandler

// DispatcherMetrics tracks dispatcher performance.
type DispatcherMetrics struct {
	MessagesReceived  int64
	MessagesProcessed int64
	MessagesErrored   int64
	TotalLatency      time.Duration
}

// Dispatcher routes messages to handlers by event name. Events without a
// registered handler go to the fallback, if any.
type Dispatcher struct {
	handlers   map[string]MessageHandler
	fallback   MessageHandler
	middleware []MiddlewareFunc
	timeout    time.Duration

	metrics   DispatcherMetrics
	metricsMu sync.Mutex

	mu sync.RWMutex
}

// NewDispatcher creates a new message dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]MessageHandler),
		timeout:  5 * time.Second,
	}
}

// SetTimeout sets the deadline placed on each handler's context.
func (d *Dispatcher) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = timeout
}

// On registers a handler for an event.
func (d *Dispatcher) On(event string, handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = handler
}

// OnFunc registers a handler function for an event.
func (d *Dispatcher) OnFunc(event string, fn func(ctx context.Context, msg *Message) (*Message, error)) {
	d.On(event, MessageHandlerFunc(fn))
}

// Fallback sets the handler for events with no registered handler.
func (d *Dispatcher) Fallback(handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = handler
}

// Use adds middleware to the dispatcher.
func (d *Dispatcher) Use(mw MiddlewareFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middleware = append(d.middleware, mw)
}

// Dispatch routes a message to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *Message) (*Message, error) {
	d.mu.RLock()
	handler, ok := d.handlers[msg.Event]
	if !ok {
		handler = d.fallback
	}
	middleware := make([]MiddlewareFunc, len(d.middleware))
	copy(middleware, d.middleware)
	timeout := d.timeout
	d.mu.RUnlock()

	d.metricsMu.Lock()
	d.metrics.MessagesReceived++
	d.metricsMu.Unlock()

	if handler == nil {
		d.metricsMu.Lock()
		d.metrics.MessagesErrored++
		d.metricsMu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, msg.Event)
	}

	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}

	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := d.executeWithRecovery(ctx, handler, msg)

	d.metricsMu.Lock()
	d.metrics.TotalLatency += time.Since(start)
	if err != nil {
		d.metrics.MessagesErrored++
	} else {
		d.metrics.MessagesProcessed++
	}
	d.metricsMu.Unlock()

	return result, err
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(ctx context.Context, handler MessageHandler, msg *Message) (result *Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	return handler.HandleMessage(ctx, msg)
}

// Metrics returns a snapshot of the dispatcher metrics.
func (d *Dispatcher) Metrics() DispatcherMetrics {
	d.metricsMu.Lock()
	defer d.metricsMu.Unlock()
	return d.metrics
}

// LoggingMiddleware logs each dispatched message at debug level.
func LoggingMiddleware(logger logging.Logger) MiddlewareFunc {
	return func(next MessageHandler) MessageHandler {
		return MessageHandlerFunc(func(ctx context.Context, msg *Message) (*Message, error) {
			start := time.Now()
			result, err := next.HandleMessage(ctx, msg)

			fields := []logging.Field{
				logging.String("topic", msg.Topic),
				logging.String("event", msg.Event),
				logging.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Debug("message failed", append(fields, logging.Err(err))...)
			} else {
				logger.Debug("message handled", fields...)
			}
			return result, err
		})
	}
}
