package botgo

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/convexim/botgo/logger"
	"github.com/convexim/botgo/models"
)

// ErrorHandlerFunc handles one error raised inside the middleware chain.
// Returning a non-nil error re-dispatches with the failing entry excluded.
type ErrorHandlerFunc func(ctx context.Context, cmd models.Command, err error) error

// exceptionRouter maps concrete error types to handlers. On dispatch it
// walks the raised error's unwrap chain outermost-first and fires the first
// matching handler.
type exceptionRouter struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]ErrorHandlerFunc
	log      *logger.Logger
}

func newExceptionRouter(log *logger.Logger) *exceptionRouter {
	r := &exceptionRouter{
		handlers: make(map[reflect.Type]ErrorHandlerFunc),
		log:      log,
	}
	r.register(&HandlerNotFoundError{}, func(ctx context.Context, cmd models.Command, err error) error {
		var notFound *HandlerNotFoundError
		if errors.As(err, &notFound) {
			log.Info("no handler matched command body %q", notFound.Body)
		}
		return nil
	})
	return r
}

// register installs a handler for the prototype's concrete type.
func (r *exceptionRouter) register(prototype error, h ErrorHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[reflect.TypeOf(prototype)] = h
}

// route dispatches err to the first registered handler found along its
// unwrap chain. A failing handler's type is excluded and the original
// error re-dispatched; an error nothing handles is logged.
func (r *exceptionRouter) route(ctx context.Context, cmd models.Command, err error) {
	// The dependency-failure sentinel requests silent abort.
	if errors.Is(err, ErrAbortExecution) {
		return
	}
	r.dispatch(ctx, cmd, err, make(map[reflect.Type]bool))
}

func (r *exceptionRouter) dispatch(ctx context.Context, cmd models.Command, err error, excluded map[reflect.Type]bool) {
	for link := err; link != nil; link = errors.Unwrap(link) {
		t := reflect.TypeOf(link)
		if excluded[t] {
			continue
		}
		r.mu.RLock()
		h, ok := r.handlers[t]
		r.mu.RUnlock()
		if !ok {
			continue
		}
		handlerErr := h(ctx, cmd, err)
		if handlerErr == nil {
			return
		}
		excluded[t] = true
		r.log.Error("error handler for %s failed: %v", t, handlerErr)
		r.dispatch(ctx, cmd, err, excluded)
		return
	}
	r.log.Error("unhandled error while processing command: %v", err)
}
