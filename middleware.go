package botgo

import (
	"context"

	"github.com/convexim/botgo/models"
)

// Middleware wraps handler execution. The chain is applied in registration
// order outside-in: the first registered middleware sees the command first.
// A middleware that never calls next terminates the pipeline silently for
// that command.
type Middleware func(next HandlerFunc) HandlerFunc

// wrap builds the chain around terminal, innermost-last.
func wrap(terminal HandlerFunc, chains ...[]Middleware) HandlerFunc {
	h := terminal
	for c := len(chains) - 1; c >= 0; c-- {
		mws := chains[c]
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
	}
	return h
}

// AuthMiddleware pre-warms the token cache for the command's host, so
// handlers never pay the cold-path token fetch on their first outbound
// call. Opt in with Bot.Use.
func (b *Bot) AuthMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd models.Command) error {
			if err := b.client.EnsureToken(ctx, cmd.CommandBinding()); err != nil {
				return err
			}
			return next(ctx, cmd)
		}
	}
}
