package botgo

import (
	"context"
	"fmt"

	"github.com/convexim/botgo/models"
)

// MenuCommand is one entry of the public command menu.
type MenuCommand struct {
	Body        string `json:"body"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StatusResult is the bot's answer to a status request.
type StatusResult struct {
	Enabled       bool          `json:"enabled"`
	StatusMessage string        `json:"status_message"`
	Commands      []MenuCommand `json:"commands"`
}

// Status builds the command menu for the given recipient. Visibility
// predicates are evaluated synchronously, in registration order. A request
// for an unknown bot id fails with ServerUnknownError.
func (b *Bot) Status(ctx context.Context, recipient models.StatusRecipient) (*StatusResult, error) {
	if _, ok := b.creds.GetByBotID(recipient.BotID); !ok {
		return nil, &ServerUnknownError{BotID: recipient.BotID}
	}

	result := &StatusResult{
		Enabled:       true,
		StatusMessage: b.statusMessage,
		Commands:      []MenuCommand{},
	}
	for _, body := range b.collector.commandOrder {
		h := b.collector.commands[body]
		visible, err := h.Visible(ctx, recipient)
		if err != nil {
			return nil, fmt.Errorf("evaluating visibility of %s: %w", body, err)
		}
		if !visible {
			continue
		}
		result.Commands = append(result.Commands, MenuCommand{
			Body:        h.Body,
			Name:        h.Name,
			Description: h.Description,
		})
	}
	return result, nil
}
