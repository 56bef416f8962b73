// Package botgo is a client framework for building chat bots on the Convex
// corporate messenger: it decodes webhook callbacks into typed commands,
// routes them through user-registered handlers under a middleware chain,
// runs them on a bounded task pool and talks back to the messenger API.
package botgo

import (
	"context"

	"github.com/convexim/botgo/models"
)

// HandlerFunc processes one decoded command. Middlewares wrap values of
// this type.
type HandlerFunc func(ctx context.Context, cmd models.Command) error

// MessageHandlerFunc processes a user message.
type MessageHandlerFunc func(ctx context.Context, msg *models.UserMessage) error

// DependencyFunc runs before a handler; returning ErrAbortExecution stops
// the invocation silently, any other error is routed like a handler error.
type DependencyFunc func(ctx context.Context, msg *models.UserMessage) error

// VisibilityFunc decides whether a command shows up in the menu for a
// given recipient. It is evaluated synchronously at status time.
type VisibilityFunc func(ctx context.Context, recipient models.StatusRecipient) (bool, error)

// VisibleAlways shows the command to every recipient.
func VisibleAlways(context.Context, models.StatusRecipient) (bool, error) { return true, nil }

// VisibleNever keeps the command out of every menu.
func VisibleNever(context.Context, models.StatusRecipient) (bool, error) { return false, nil }

// CommandHandler is one registered slash command.
type CommandHandler struct {
	// Body is the exact first-token key, e.g. "/help".
	Body        string
	Name        string
	Description string
	// Visible defaults to VisibleAlways.
	Visible VisibilityFunc

	Handler      MessageHandlerFunc
	Middlewares  []Middleware
	Dependencies []DependencyFunc
}

// toHandlerFunc adapts the typed handler, running dependencies first.
func (h *CommandHandler) toHandlerFunc() HandlerFunc {
	return messageAdapter(h.Dependencies, h.Handler)
}

func messageAdapter(deps []DependencyFunc, handler MessageHandlerFunc) HandlerFunc {
	return func(ctx context.Context, cmd models.Command) error {
		msg, ok := cmd.(*models.UserMessage)
		if !ok {
			return nil
		}
		for _, dep := range deps {
			if err := dep(ctx, msg); err != nil {
				return err
			}
		}
		return handler(ctx, msg)
	}
}
