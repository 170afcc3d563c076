package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []QueryMiddleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus
func NewQueryBus(middlewares ...QueryMiddleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrQueryHandlerNotFound, query)
	}

	return handler.Handle(ctx, query)
}

// QueryMiddleware defines query middleware
type QueryMiddleware func(next QueryHandler) QueryHandler

// QueryLoggingMiddleware logs query execution failures
func QueryLoggingMiddleware(logger *zap.Logger) QueryMiddleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			result, err := next.Handle(ctx, query)
			if err != nil {
				logger.Error("Query failed",
					zap.String("type", reflect.TypeOf(query).Name()),
					zap.Error(err),
				)
			}
			return result, err
		})
	}
}

// Errors
var (
	ErrQueryHandlerNotFound  = errors.New("query handler not found")
	ErrQueryValidationFailed = errors.New("query validation failed")
)
