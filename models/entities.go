package models

import (
	"time"

	"github.com/google/uuid"
)

// MentionType tags what kind of entity a mention points at.
type MentionType string

const (
	MentionUser    MentionType = "user"
	MentionContact MentionType = "contact"
	MentionChat    MentionType = "chat"
	MentionChannel MentionType = "channel"
	MentionAll     MentionType = "all"
)

// Mention references a user, contact, chat or channel inside a message.
// User and contact mentions carry a person id; chat and channel mentions
// carry a chat id; an all-mention carries only its own id.
type Mention struct {
	Type      MentionType
	MentionID uuid.UUID
	EntityID  *uuid.UUID
	Name      string
}

// NewUserMention builds a mention of a user by HUID.
func NewUserMention(huid uuid.UUID, name string) Mention {
	return Mention{Type: MentionUser, MentionID: uuid.New(), EntityID: &huid, Name: name}
}

// NewContactMention builds a mention of a contact by HUID.
func NewContactMention(huid uuid.UUID, name string) Mention {
	return Mention{Type: MentionContact, MentionID: uuid.New(), EntityID: &huid, Name: name}
}

// NewChatMention builds a mention of a group chat.
func NewChatMention(chatID uuid.UUID, name string) Mention {
	return Mention{Type: MentionChat, MentionID: uuid.New(), EntityID: &chatID, Name: name}
}

// NewChannelMention builds a mention of a channel.
func NewChannelMention(chatID uuid.UUID, name string) Mention {
	return Mention{Type: MentionChannel, MentionID: uuid.New(), EntityID: &chatID, Name: name}
}

// NewAllMention builds an @all mention.
func NewAllMention() Mention {
	return Mention{Type: MentionAll, MentionID: uuid.New()}
}

// Forward marks a message as forwarded from another chat.
type Forward struct {
	ChatID           uuid.UUID
	SenderHUID       uuid.UUID
	ChatType         ChatType
	ChatName         string
	SourceSyncID     uuid.UUID
	SourceInsertedAt time.Time
}

// Reply carries the message this one replies to.
type Reply struct {
	SyncID     uuid.UUID
	Body       string
	SenderHUID uuid.UUID
	ChatType   ChatType
	ChatName   string
}
