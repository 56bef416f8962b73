package models

import "github.com/google/uuid"

// EventKind identifies a system event variant. The value is the on-wire
// command body for that event.
type EventKind string

const (
	EventChatCreated             EventKind = "system:chat_created"
	EventAddedToChat             EventKind = "system:added_to_chat"
	EventDeletedFromChat         EventKind = "system:deleted_from_chat"
	EventLeftFromChat            EventKind = "system:left_from_chat"
	EventCTSLogin                EventKind = "system:cts_login"
	EventCTSLogout               EventKind = "system:cts_logout"
	EventInternalBotNotification EventKind = "system:internal_bot_notification"
	EventSmartAppEvent           EventKind = "system:smartapp_event"
	EventFileTransfer            EventKind = "file_transfer"
)

// SystemEvent is a Command describing a messenger-side event rather than a
// user message.
type SystemEvent interface {
	Command
	// Kind returns the event variant.
	Kind() EventKind
}

// ChatMemberKind distinguishes users from bots in chat membership lists.
type ChatMemberKind string

const (
	ChatMemberUser ChatMemberKind = "user"
	ChatMemberBot  ChatMemberKind = "botx"
)

// ChatMember is one participant in a created chat.
type ChatMember struct {
	HUID    uuid.UUID
	Kind    ChatMemberKind
	Name    string
	IsAdmin bool
}

// ChatCreatedEvent fires when a chat with the bot is created.
type ChatCreatedEvent struct {
	commandBase
	ChatID   uuid.UUID
	ChatName string
	ChatType ChatType
	Creator  uuid.UUID
	Members  []ChatMember
}

func (*ChatCreatedEvent) Kind() EventKind { return EventChatCreated }

// AddedToChatEvent fires when users (possibly the bot) are added to a chat.
type AddedToChatEvent struct {
	commandBase
	Chat  Chat
	HUIDs []uuid.UUID
}

func (*AddedToChatEvent) Kind() EventKind { return EventAddedToChat }

// DeletedFromChatEvent fires when users are removed from a chat.
type DeletedFromChatEvent struct {
	commandBase
	Chat  Chat
	HUIDs []uuid.UUID
}

func (*DeletedFromChatEvent) Kind() EventKind { return EventDeletedFromChat }

// LeftFromChatEvent fires when users leave a chat on their own.
type LeftFromChatEvent struct {
	commandBase
	Chat  Chat
	HUIDs []uuid.UUID
}

func (*LeftFromChatEvent) Kind() EventKind { return EventLeftFromChat }

// CTSLoginEvent fires when a user logs in to the messenger server.
type CTSLoginEvent struct {
	commandBase
	HUID uuid.UUID
}

func (*CTSLoginEvent) Kind() EventKind { return EventCTSLogin }

// CTSLogoutEvent fires when a user logs out of the messenger server.
type CTSLogoutEvent struct {
	commandBase
	HUID uuid.UUID
}

func (*CTSLogoutEvent) Kind() EventKind { return EventCTSLogout }

// InternalBotNotificationEvent is a bot-to-bot notification routed through
// the messenger.
type InternalBotNotificationEvent struct {
	commandBase
	Chat uuid.UUID
	Data map[string]interface{}
	Opts map[string]interface{}
}

func (*InternalBotNotificationEvent) Kind() EventKind { return EventInternalBotNotification }

// SmartAppEvent is a structured event from an embedded mini-application.
type SmartAppEvent struct {
	commandBase
	Ref        *uuid.UUID
	SmartAppID uuid.UUID
	APIVersion int
	Chat       Chat
	Sender     Sender
	Data       map[string]interface{}
	Opts       map[string]interface{}
	Files      []AsyncFile
}

func (*SmartAppEvent) Kind() EventKind { return EventSmartAppEvent }

// FileTransferEvent fires when a file is sent to a chat with the bot.
type FileTransferEvent struct {
	commandBase
	Chat Chat
	File AsyncFile
}

func (*FileTransferEvent) Kind() EventKind { return EventFileTransfer }
