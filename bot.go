package botgo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/convexim/botgo/client"
	"github.com/convexim/botgo/credstore"
	"github.com/convexim/botgo/logger"
	"github.com/convexim/botgo/models"
)

// HookFunc runs at bot startup or shutdown.
type HookFunc func(ctx context.Context) error

// Options configure a Bot.
type Options struct {
	// Collectors hold the handler registrations; they are merged at
	// construction and collisions fail New.
	Collectors []*Collector
	// Accounts are the bot's credentials, one per messenger server.
	Accounts []credstore.Account
	// HTTPClient overrides the outbound HTTP client.
	HTTPClient *http.Client
	// Logger defaults to stderr at INFO.
	Logger *logger.Logger
	// TaskLimit bounds concurrent handler invocations; 0 means the
	// default of 1500.
	TaskLimit int
	// StatusMessage is reported by the status endpoint; defaults to
	// "Bot is working".
	StatusMessage string
}

// Bot is the framework facade: it owns the credential store, the outbound
// client, the handler registry, the middleware chain, the exception router
// and the execution pool.
type Bot struct {
	collector *Collector
	creds     *credstore.Store
	client    *client.Client
	decoder   *models.Decoder
	router    *exceptionRouter
	pool      *taskPool
	log       *logger.Logger

	middlewares []Middleware

	statusMessage string

	startupHooks  []HookFunc
	shutdownHooks []HookFunc
}

// New builds a bot from the given options, merging all collectors. It
// fails on registration collisions.
func New(opts Options) (*Bot, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	merged := NewCollector()
	if err := merged.Include(opts.Collectors...); err != nil {
		return nil, fmt.Errorf("building bot: %w", err)
	}

	creds := credstore.New(opts.Accounts...)
	statusMessage := opts.StatusMessage
	if statusMessage == "" {
		statusMessage = "Bot is working"
	}

	return &Bot{
		collector:     merged,
		creds:         creds,
		client:        client.New(creds, opts.HTTPClient, log),
		decoder:       models.NewDecoder(log),
		router:        newExceptionRouter(log),
		pool:          newTaskPool(opts.TaskLimit),
		log:           log,
		statusMessage: statusMessage,
	}, nil
}

// Use appends global middlewares. They run in registration order around
// every handler. Call before Startup.
func (b *Bot) Use(mws ...Middleware) {
	b.middlewares = append(b.middlewares, mws...)
}

// HandleError registers an exception-router entry for the prototype's
// concrete error type.
func (b *Bot) HandleError(prototype error, h ErrorHandlerFunc) {
	b.router.register(prototype, h)
}

// OnStartup registers a hook run by Startup.
func (b *Bot) OnStartup(h HookFunc) { b.startupHooks = append(b.startupHooks, h) }

// OnShutdown registers a hook run by Shutdown after the task pool drains.
func (b *Bot) OnShutdown(h HookFunc) { b.shutdownHooks = append(b.shutdownHooks, h) }

// Client exposes the outbound API client for calls the convenience surface
// does not cover.
func (b *Bot) Client() *client.Client { return b.client }

// Credentials exposes the credential store.
func (b *Bot) Credentials() *credstore.Store { return b.creds }

// ExecuteCommand decodes a webhook payload, resolves its handler and
// schedules the invocation. It returns once the task is scheduled; the
// handler completes asynchronously. Decode failures and commands for
// unknown bot ids are returned to the caller rather than routed through
// exception handlers.
func (b *Bot) ExecuteCommand(ctx context.Context, raw []byte) error {
	cmd, err := b.decoder.Decode(raw)
	if err != nil {
		return err
	}

	bind := cmd.CommandBinding()
	if _, ok := b.creds.GetByBotID(bind.BotID); !ok {
		return &ServerUnknownError{BotID: bind.BotID}
	}

	entry, err := b.collector.resolve(cmd)
	if err != nil {
		// No handler and no default: offer the miss to the exception
		// router (logs at info) and acknowledge the command.
		b.router.route(ctx, cmd, err)
		return nil
	}
	if entry == nil {
		// Unhandled system event, dropped without spawning a task.
		return nil
	}

	chain := wrap(entry.fn, b.middlewares, entry.middlewares)
	b.pool.Spawn(func() {
		// Detached from the ingress request context: the HTTP
		// acknowledgement must not gate handler execution. The bot
		// itself rides in the context so handlers can reach the
		// outbound surface without capturing it at registration time.
		taskCtx := context.WithValue(context.WithoutCancel(ctx), botContextKey{}, b)
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("handler panicked: %v", r)
			}
		}()
		if err := chain(taskCtx, cmd); err != nil {
			b.router.route(taskCtx, cmd, err)
		}
	})
	return nil
}

// PendingTasks reports how many scheduled handler invocations have not
// finished.
func (b *Bot) PendingTasks() int { return b.pool.PendingCount() }

// Startup runs the registered startup hooks. Call it before accepting the
// first command.
func (b *Bot) Startup(ctx context.Context) error {
	for _, h := range b.startupHooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}
	b.log.Info("bot started, serving %d hosts", len(b.creds.Hosts()))
	return nil
}

// Shutdown waits for every in-flight handler to complete (nothing is
// cancelled), then runs the shutdown hooks. The context bounds the wait.
func (b *Bot) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.pool.Drain()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("draining task pool: %w", ctx.Err())
	}

	for _, h := range b.shutdownHooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("shutdown hook: %w", err)
		}
	}
	b.log.Info("bot stopped")
	return nil
}

type botContextKey struct{}

// FromContext returns the bot that dispatched the current handler
// invocation, or nil outside a handler.
func FromContext(ctx context.Context) *Bot {
	b, _ := ctx.Value(botContextKey{}).(*Bot)
	return b
}

// bindingForBot resolves the server binding for outbound calls made with
// an explicit bot id.
func (b *Bot) bindingForBot(botID uuid.UUID) (models.Binding, error) {
	account, ok := b.creds.GetByBotID(botID)
	if !ok {
		return models.Binding{}, &ServerUnknownError{BotID: botID}
	}
	return models.Binding{BotID: botID, Host: account.Host}, nil
}
