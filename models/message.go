package models

import "github.com/google/uuid"

// MaxMessageBodyLength is the messenger's limit on outbound message text.
const MaxMessageBodyLength = 4096

// Button is one cell of a bubble or keyboard grid.
type Button struct {
	Command         string
	Label           string
	Data            map[string]interface{}
	Silent          bool
	WidthRatio      *int
	AlertText       string
	ProcessOnClient *bool
}

// ButtonRow is one grid row.
type ButtonRow []Button

// NotificationOptions controls how recipients are notified.
type NotificationOptions struct {
	Send     bool
	ForceDND bool
}

// MessageOptions are the delivery options of an outbound message.
type MessageOptions struct {
	// Recipients limits delivery to the listed users; empty means all.
	Recipients       []uuid.UUID
	Mentions         []Mention
	Notifications    NotificationOptions
	SilentResponse   bool
	StealthMode      bool
	MarkupAutoAdjust bool
}

// MessagePayload is a fully built outbound message: text, markup, options
// and an optional file.
type MessagePayload struct {
	Body     string
	Metadata map[string]interface{}
	File     *OutgoingFile
	Bubbles  []ButtonRow
	Keyboard []ButtonRow
	Options  MessageOptions
}
