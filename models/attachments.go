package models

import "github.com/google/uuid"

// AttachmentKind is the wire tag of an inbound attachment.
type AttachmentKind string

const (
	AttachmentImage        AttachmentKind = "image"
	AttachmentVideo        AttachmentKind = "video"
	AttachmentDocument     AttachmentKind = "document"
	AttachmentVoice        AttachmentKind = "voice"
	AttachmentLocationKind AttachmentKind = "location"
	AttachmentContactKind  AttachmentKind = "contact"
	AttachmentLinkKind     AttachmentKind = "link"
)

// AttachmentFile is an inline file attachment (image, video, document or
// voice note) delivered with its content base64-encoded on the wire.
type AttachmentFile struct {
	Kind     AttachmentKind
	FileName string
	Content  []byte
	Duration int // seconds, voice and video only
}

// AttachmentLocation is a shared geographic location.
type AttachmentLocation struct {
	Name      string
	Address   string
	Latitude  string
	Longitude string
}

// AttachmentContact is a shared contact card.
type AttachmentContact struct {
	Name string
}

// AttachmentLink is a shared hyperlink with its unfurled preview.
type AttachmentLink struct {
	URL     string
	Title   string
	Preview string
	Text    string
}

// AsyncFile is a file stored on the messenger server and referenced by id;
// its content is fetched separately through the files API.
type AsyncFile struct {
	Kind     AttachmentKind
	FileID   uuid.UUID
	FileName string
	FileSize int64
	MimeType string
	Duration int
}
