package botgo

import (
	"context"
	"fmt"
	"regexp"

	"github.com/convexim/botgo/models"
)

// Collector aggregates handler registrations. Collectors can be included
// into one another and finally into a bot; inclusion fails on any key
// collision. Populate collectors before Bot startup; they are read-only
// afterwards.
type Collector struct {
	commands     map[string]*CommandHandler
	commandOrder []string

	hidden []*hiddenHandler

	defaultHandler *CommandHandler

	events map[models.EventKind]HandlerFunc
}

type hiddenHandler struct {
	pattern *regexp.Regexp
	handler *CommandHandler
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		commands: make(map[string]*CommandHandler),
		events:   make(map[models.EventKind]HandlerFunc),
	}
}

// Command registers a slash command handler. The body must be a well-formed
// command key and not yet taken.
func (c *Collector) Command(h CommandHandler) error {
	if h.Handler == nil {
		return fmt.Errorf("command %q has no handler", h.Body)
	}
	if err := models.ValidCommandKey(h.Body); err != nil {
		return err
	}
	if _, taken := c.commands[h.Body]; taken {
		return fmt.Errorf("command %q is already registered", h.Body)
	}
	if h.Name == "" {
		h.Name = h.Body
	}
	if h.Visible == nil {
		h.Visible = VisibleAlways
	}
	c.commands[h.Body] = &h
	c.commandOrder = append(c.commandOrder, h.Body)
	return nil
}

// ReplaceCommand registers a slash command, replacing any existing handler
// for the same body. This is the explicit opt-in for overriding a command
// from an included collector.
func (c *Collector) ReplaceCommand(h CommandHandler) error {
	if _, taken := c.commands[h.Body]; taken {
		delete(c.commands, h.Body)
		for i, body := range c.commandOrder {
			if body == h.Body {
				c.commandOrder = append(c.commandOrder[:i], c.commandOrder[i+1:]...)
				break
			}
		}
	}
	return c.Command(h)
}

// HiddenCommand registers a handler matched by regular expression against
// the message body when no exact command key matches. Hidden commands never
// appear in the menu.
func (c *Collector) HiddenCommand(pattern string, handler MessageHandlerFunc, middlewares ...Middleware) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling hidden command pattern %q: %w", pattern, err)
	}
	c.hidden = append(c.hidden, &hiddenHandler{
		pattern: re,
		handler: &CommandHandler{
			Body:        pattern,
			Name:        pattern,
			Visible:     VisibleNever,
			Handler:     handler,
			Middlewares: middlewares,
		},
	})
	return nil
}

// Default registers the fallback handler for user messages that match no
// command. Only one default may exist.
func (c *Collector) Default(handler MessageHandlerFunc, middlewares ...Middleware) error {
	if c.defaultHandler != nil {
		return fmt.Errorf("default message handler is already registered")
	}
	c.defaultHandler = &CommandHandler{
		Name:        "default",
		Visible:     VisibleNever,
		Handler:     handler,
		Middlewares: middlewares,
	}
	return nil
}

func (c *Collector) registerEvent(kind models.EventKind, h HandlerFunc) error {
	if _, taken := c.events[kind]; taken {
		return fmt.Errorf("system event %s is already handled", kind)
	}
	c.events[kind] = h
	return nil
}

// ChatCreated registers the chat-created event handler.
func (c *Collector) ChatCreated(h func(ctx context.Context, ev *models.ChatCreatedEvent) error) error {
	return c.registerEvent(models.EventChatCreated, eventAdapter(h))
}

// AddedToChat registers the added-to-chat event handler.
func (c *Collector) AddedToChat(h func(ctx context.Context, ev *models.AddedToChatEvent) error) error {
	return c.registerEvent(models.EventAddedToChat, eventAdapter(h))
}

// DeletedFromChat registers the deleted-from-chat event handler.
func (c *Collector) DeletedFromChat(h func(ctx context.Context, ev *models.DeletedFromChatEvent) error) error {
	return c.registerEvent(models.EventDeletedFromChat, eventAdapter(h))
}

// LeftFromChat registers the left-from-chat event handler.
func (c *Collector) LeftFromChat(h func(ctx context.Context, ev *models.LeftFromChatEvent) error) error {
	return c.registerEvent(models.EventLeftFromChat, eventAdapter(h))
}

// CTSLogin registers the server-login event handler.
func (c *Collector) CTSLogin(h func(ctx context.Context, ev *models.CTSLoginEvent) error) error {
	return c.registerEvent(models.EventCTSLogin, eventAdapter(h))
}

// CTSLogout registers the server-logout event handler.
func (c *Collector) CTSLogout(h func(ctx context.Context, ev *models.CTSLogoutEvent) error) error {
	return c.registerEvent(models.EventCTSLogout, eventAdapter(h))
}

// InternalBotNotification registers the bot-to-bot notification handler.
func (c *Collector) InternalBotNotification(h func(ctx context.Context, ev *models.InternalBotNotificationEvent) error) error {
	return c.registerEvent(models.EventInternalBotNotification, eventAdapter(h))
}

// SmartAppEvent registers the smartapp event handler.
func (c *Collector) SmartAppEvent(h func(ctx context.Context, ev *models.SmartAppEvent) error) error {
	return c.registerEvent(models.EventSmartAppEvent, eventAdapter(h))
}

// FileTransfer registers the file transfer event handler.
func (c *Collector) FileTransfer(h func(ctx context.Context, ev *models.FileTransferEvent) error) error {
	return c.registerEvent(models.EventFileTransfer, eventAdapter(h))
}

func eventAdapter[E models.SystemEvent](h func(ctx context.Context, ev E) error) HandlerFunc {
	return func(ctx context.Context, cmd models.Command) error {
		ev, ok := cmd.(E)
		if !ok {
			return nil
		}
		return h(ctx, ev)
	}
}

// Include merges other collectors into this one. A duplicate command key,
// a duplicate system event or a second default handler fails the merge.
func (c *Collector) Include(others ...*Collector) error {
	for _, other := range others {
		for _, body := range other.commandOrder {
			h := other.commands[body]
			if _, taken := c.commands[body]; taken {
				return fmt.Errorf("including collector: command %q is already registered", body)
			}
			c.commands[body] = h
			c.commandOrder = append(c.commandOrder, body)
		}
		c.hidden = append(c.hidden, other.hidden...)
		if other.defaultHandler != nil {
			if c.defaultHandler != nil {
				return fmt.Errorf("including collector: default message handler is already registered")
			}
			c.defaultHandler = other.defaultHandler
		}
		for kind, h := range other.events {
			if err := c.registerEvent(kind, h); err != nil {
				return fmt.Errorf("including collector: %w", err)
			}
		}
	}
	return nil
}

// resolved is the outcome of handler lookup for one command.
type resolved struct {
	fn          HandlerFunc
	middlewares []Middleware
}

// resolve picks the handler for a decoded command:
// exact command key, then hidden patterns, then the default; system events
// go by variant. A nil result with a nil error means the command is
// silently dropped (unhandled system event).
func (c *Collector) resolve(cmd models.Command) (*resolved, error) {
	switch v := cmd.(type) {
	case *models.UserMessage:
		if key := v.CommandKey(); key != "" {
			if h, ok := c.commands[key]; ok {
				return &resolved{fn: h.toHandlerFunc(), middlewares: h.Middlewares}, nil
			}
		}
		for _, hidden := range c.hidden {
			if hidden.pattern.MatchString(v.Body) {
				h := hidden.handler
				return &resolved{fn: h.toHandlerFunc(), middlewares: h.Middlewares}, nil
			}
		}
		if c.defaultHandler != nil {
			h := c.defaultHandler
			return &resolved{fn: h.toHandlerFunc(), middlewares: h.Middlewares}, nil
		}
		return nil, &HandlerNotFoundError{Body: v.Body}

	case models.SystemEvent:
		if h, ok := c.events[v.Kind()]; ok {
			return &resolved{fn: h}, nil
		}
		return nil, nil

	default:
		return nil, nil
	}
}
