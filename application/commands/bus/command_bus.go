package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Command represents an operation that mutates a session.
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandBus dispatches commands to their handlers by concrete type.
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	mu       sync.RWMutex
}

// NewCommandBus creates an empty command bus.
func NewCommandBus() *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
	}
}

// Register registers a handler for a command type.
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Send validates a command and dispatches it to its handler.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for command type %T", cmd)
	}

	if err := handler.Handle(ctx, cmd); err != nil {
		return fmt.Errorf("command handler failed: %w", err)
	}

	return nil
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers.
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements CommandHandler.
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Middleware wraps command handlers.
type Middleware func(next CommandHandler) CommandHandler

// LoggingMiddleware logs command execution. Pointer-move commands arrive
// dozens of times per second, so successes log at debug only.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			cmdType := reflect.TypeOf(cmd).Name()

			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", zap.String("type", cmdType), zap.Error(err))
			} else {
				logger.Debug("Command succeeded", zap.String("type", cmdType))
			}

			return err
		})
	}
}

// Wrap applies middleware to a handler, outermost first.
func Wrap(handler CommandHandler, middlewares ...Middleware) CommandHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
