// Package models defines the typed view of the messenger wire protocol:
// inbound commands and system events, attachments, entities, mentions and
// files. The decoder in this package is the sole constructor of Command
// values; handler bodies discriminate on the concrete type.
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ChatType is the kind of chat a command originates from.
type ChatType string

const (
	ChatTypePersonal ChatType = "chat"
	ChatTypeGroup    ChatType = "group_chat"
	ChatTypeChannel  ChatType = "channel"
)

// ClientPlatform is the sender's client platform.
type ClientPlatform string

const (
	PlatformWeb     ClientPlatform = "web"
	PlatformAndroid ClientPlatform = "android"
	PlatformIOS     ClientPlatform = "ios"
	PlatformDesktop ClientPlatform = "desktop"
)

// Binding ties a command to the bot identity and the messenger server that
// delivered it. Outbound calls made while handling the command reuse it.
type Binding struct {
	BotID uuid.UUID
	Host  string
}

// Chat identifies the chat a command came from.
type Chat struct {
	ID   uuid.UUID
	Type ChatType
}

// DeviceMeta carries optional client device details.
type DeviceMeta struct {
	Pushes      *bool
	Timezone    string
	Permissions map[string]interface{}
}

// Sender describes the user who triggered a command.
type Sender struct {
	HUID       *uuid.UUID
	UDID       *uuid.UUID
	ADLogin    string
	ADDomain   string
	Username   string
	IsAdmin    *bool
	IsCreator  *bool
	Device     string
	Platform   ClientPlatform
	AppVersion string
	Locale     string
	DeviceMeta *DeviceMeta
}

// Command is an inbound webhook payload decoded into one of the concrete
// command types: *UserMessage or a system event.
type Command interface {
	// CommandBinding returns the (bot id, host) pair the command is bound to.
	CommandBinding() Binding
	// RawJSON returns the undecoded webhook payload, retained for logging
	// and for handlers that need fields outside the typed model.
	RawJSON() json.RawMessage

	isCommand()
}

type commandBase struct {
	Bind Binding
	Raw  json.RawMessage
}

func (b commandBase) CommandBinding() Binding  { return b.Bind }
func (b commandBase) RawJSON() json.RawMessage { return b.Raw }
func (b commandBase) isCommand()               {}

// UserMessage is a message typed by a user, possibly carrying a slash
// command in its body.
type UserMessage struct {
	commandBase

	SyncID       uuid.UUID
	SourceSyncID *uuid.UUID
	Body         string
	Data         map[string]interface{}
	Metadata     map[string]interface{}
	Sender       Sender
	Chat         Chat

	File      *AttachmentFile
	Location  *AttachmentLocation
	Contact   *AttachmentContact
	Link      *AttachmentLink
	AsyncFile *AsyncFile

	Mentions []Mention
	Forward  *Forward
	Reply    *Reply
}

// newUserMessage is used by the decoder and by tests inside the package.
func newUserMessage(bind Binding, raw json.RawMessage) *UserMessage {
	return &UserMessage{commandBase: commandBase{Bind: bind, Raw: raw}}
}
