// Package builder constructs outbound message payloads through fluent
// calls: text, bubble and keyboard grids, delivery options, a file
// attachment and in-text embedded mentions.
package builder

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Message accumulates the parts of an outbound message. Zero value is not
// usable; start with New.
type Message struct {
	payload       models.MessagePayload
	embedMentions bool
	err           error
}

// New starts a message with the given body text.
func New(body string) *Message {
	return &Message{payload: models.MessagePayload{Body: body}}
}

// EmbedMentions enables embed-mention substitution: at build time every
// well-formed embed token in the body is replaced by the messenger's
// on-wire placeholder and recorded in the payload's mention list.
func (m *Message) EmbedMentions() *Message {
	m.embedMentions = true
	return m
}

// Metadata attaches opaque metadata delivered with the message.
func (m *Message) Metadata(metadata map[string]interface{}) *Message {
	m.payload.Metadata = metadata
	return m
}

// AddBubble appends a bubble button. With newRow the button starts a fresh
// row; otherwise it extends the last one. The first button always starts
// the first row.
func (m *Message) AddBubble(b models.Button, newRow bool) *Message {
	m.payload.Bubbles = appendToGrid(m.payload.Bubbles, b, newRow)
	return m
}

// AddKeyboardButton appends a keyboard button, with the same row semantics
// as AddBubble.
func (m *Message) AddKeyboardButton(b models.Button, newRow bool) *Message {
	m.payload.Keyboard = appendToGrid(m.payload.Keyboard, b, newRow)
	return m
}

func appendToGrid(grid []models.ButtonRow, b models.Button, newRow bool) []models.ButtonRow {
	if newRow || len(grid) == 0 {
		return append(grid, models.ButtonRow{b})
	}
	last := len(grid) - 1
	grid[last] = append(grid[last], b)
	return grid
}

// File attaches an already-built outgoing file. A message carries at most
// one file; a second call replaces the first.
func (m *Message) File(f *models.OutgoingFile) *Message {
	m.payload.File = f
	return m
}

// AttachFile reads r and attaches it under fileName; the name determines
// the media type and must carry an accepted extension.
func (m *Message) AttachFile(fileName string, r io.Reader) *Message {
	f, err := models.NewOutgoingFile(fileName, r)
	if err != nil && m.err == nil {
		m.err = err
		return m
	}
	m.payload.File = f
	return m
}

// Recipients limits delivery to the listed users.
func (m *Message) Recipients(huids ...uuid.UUID) *Message {
	m.payload.Options.Recipients = huids
	return m
}

// Mention appends an explicit mention to the payload's mention list.
func (m *Message) Mention(mention models.Mention) *Message {
	m.payload.Options.Mentions = append(m.payload.Options.Mentions, mention)
	return m
}

// Notify controls whether recipients are notified and whether do-not-
// disturb is overridden.
func (m *Message) Notify(send, forceDND bool) *Message {
	m.payload.Options.Notifications = models.NotificationOptions{Send: send, ForceDND: forceDND}
	return m
}

// Silent marks the message as a silent response.
func (m *Message) Silent() *Message {
	m.payload.Options.SilentResponse = true
	return m
}

// Stealth sends the message under the chat's stealth mode timers.
func (m *Message) Stealth() *Message {
	m.payload.Options.StealthMode = true
	return m
}

// AutoAdjustMarkup lets the client reflow button grids on small screens.
func (m *Message) AutoAdjustMarkup() *Message {
	m.payload.Options.MarkupAutoAdjust = true
	return m
}

// Build finalizes the payload. Embed-mention substitution happens here,
// exactly once.
func (m *Message) Build() (*models.MessagePayload, error) {
	if m.err != nil {
		return nil, m.err
	}
	payload := m.payload
	if m.embedMentions {
		body, mentions, err := substituteEmbedMentions(payload.Body)
		if err != nil {
			return nil, err
		}
		payload.Body = body
		payload.Options.Mentions = append(payload.Options.Mentions, mentions...)
	}
	if utf8.RuneCountInString(payload.Body) > models.MaxMessageBodyLength {
		return nil, fmt.Errorf("message body exceeds %d characters", models.MaxMessageBodyLength)
	}
	return &payload, nil
}
