package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// StatusRecipient describes who is asking for the bot menu.
type StatusRecipient struct {
	BotID    uuid.UUID
	HUID     *uuid.UUID
	ADLogin  string
	ADDomain string
	IsAdmin  *bool
	ChatType ChatType
}

// commandKeyRe matches a well-formed slash command token.
var commandKeyRe = regexp.MustCompile(`^/[^\s/]+$`)

// ValidCommandKey checks that body is a well-formed command key like
// "/help".
func ValidCommandKey(body string) error {
	if !commandKeyRe.MatchString(body) {
		return fmt.Errorf("%q is not a valid command key", body)
	}
	return nil
}

// CommandKey returns the first whitespace-delimited token of the body if it
// is a well-formed slash command, or "" otherwise.
func (m *UserMessage) CommandKey() string {
	token, _ := splitCommandBody(m.Body)
	if commandKeyRe.MatchString(token) {
		return token
	}
	return ""
}

// Argument returns the body with the leading command key stripped.
func (m *UserMessage) Argument() string {
	if m.CommandKey() == "" {
		return strings.TrimSpace(m.Body)
	}
	_, rest := splitCommandBody(m.Body)
	return rest
}

func splitCommandBody(body string) (token, rest string) {
	body = strings.TrimSpace(body)
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		return body[:i], strings.TrimSpace(body[i:])
	}
	return body, ""
}

// IsForwarded reports whether the message was forwarded from another chat.
func (m *UserMessage) IsForwarded() bool { return m.Forward != nil }

// IsReply reports whether the message replies to another message.
func (m *UserMessage) IsReply() bool { return m.Reply != nil }
