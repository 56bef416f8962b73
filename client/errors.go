// Package client implements the outbound messenger API client: request
// signing, token acquisition, serialization and response classification.
package client

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorEnvelope is the error body every messenger endpoint shares.
type ErrorEnvelope struct {
	Status    string                 `json:"status"`
	Reason    string                 `json:"reason"`
	Errors    []string               `json:"errors"`
	ErrorData map[string]interface{} `json:"error_data"`
}

// RequestContext identifies the call that produced an error.
type RequestContext struct {
	Verb       string
	URL        string
	StatusCode int
	Body       string
}

// APIError is the catch-all for unclassified non-2xx responses. All typed
// outbound errors embed it, so errors.As(err, *&APIError{}) recovers the
// request context from any of them.
type APIError struct {
	RequestContext
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messenger API error: %s %s returned %d: %s",
		e.Verb, e.URL, e.StatusCode, e.Body)
}

// UnauthorizedError means the bot's credentials were rejected.
type UnauthorizedError struct{ APIError }

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("invalid bot credentials: %s %s returned %d", e.Verb, e.URL, e.StatusCode)
}

// BotNotFoundError means the messenger does not know the bot id.
type BotNotFoundError struct {
	APIError
	BotID uuid.UUID
}

func (e *BotNotFoundError) Error() string {
	return fmt.Sprintf("bot %s is unknown to %s", e.BotID, e.URL)
}

// ChatNotFoundError means the referenced chat does not exist.
type ChatNotFoundError struct {
	APIError
	ChatID uuid.UUID
}

func (e *ChatNotFoundError) Error() string {
	return fmt.Sprintf("chat %s not found", e.ChatID)
}

// ChatCreationDisallowedError means the bot may not create chats on this
// server.
type ChatCreationDisallowedError struct {
	APIError
	BotID uuid.UUID
}

func (e *ChatCreationDisallowedError) Error() string {
	return fmt.Sprintf("bot %s is not allowed to create chats", e.BotID)
}

// ChatCreationError means the server failed to create the chat.
type ChatCreationError struct{ APIError }

func (e *ChatCreationError) Error() string { return "chat creation failed" }

// ChatIsNotModifiableError means the chat is in a state that rejects
// membership or settings changes.
type ChatIsNotModifiableError struct{ APIError }

func (e *ChatIsNotModifiableError) Error() string { return "chat is not modifiable" }

// BotIsNotAdminError means the operation requires chat admin rights the bot
// does not have.
type BotIsNotAdminError struct {
	APIError
	BotID  uuid.UUID
	ChatID uuid.UUID
}

func (e *BotIsNotAdminError) Error() string {
	return fmt.Sprintf("bot %s is not an admin of chat %s", e.BotID, e.ChatID)
}

// NoPermissionError is the generic 403 on a chat operation.
type NoPermissionError struct{ APIError }

func (e *NoPermissionError) Error() string { return "no permission for chat operation" }

// UserNotFoundError means a user search found nothing.
type UserNotFoundError struct{ APIError }

func (e *UserNotFoundError) Error() string { return "user not found" }

// FileDeletedError means the referenced file was already deleted.
type FileDeletedError struct{ APIError }

func (e *FileDeletedError) Error() string { return "file deleted" }

// FileMetadataNotFoundError means the referenced file id is unknown.
type FileMetadataNotFoundError struct {
	APIError
	FileID uuid.UUID
}

func (e *FileMetadataNotFoundError) Error() string {
	return fmt.Sprintf("metadata for file %s not found", e.FileID)
}

// FileWithoutPreviewError means a preview was requested for a file kind
// that has none.
type FileWithoutPreviewError struct{ APIError }

func (e *FileWithoutPreviewError) Error() string { return "file has no preview" }

// StickerPackOrStickerNotFoundError means a sticker lookup missed.
type StickerPackOrStickerNotFoundError struct{ APIError }

func (e *StickerPackOrStickerNotFoundError) Error() string {
	return "sticker pack or sticker not found"
}

// StickerPackNotFoundError means the referenced sticker pack is unknown.
type StickerPackNotFoundError struct {
	APIError
	PackID uuid.UUID
}

func (e *StickerPackNotFoundError) Error() string {
	return fmt.Sprintf("sticker pack %s not found", e.PackID)
}

// InvalidEmojiError means the sticker emoji was rejected.
type InvalidEmojiError struct{ APIError }

func (e *InvalidEmojiError) Error() string { return "invalid sticker emoji" }

// InvalidImageError means the sticker image was rejected.
type InvalidImageError struct{ APIError }

func (e *InvalidImageError) Error() string { return "invalid sticker image" }

// MessagingError is a 400 from a messaging resource.
type MessagingError struct{ APIError }

func (e *MessagingError) Error() string {
	return fmt.Sprintf("messaging request rejected: %s", e.Body)
}

// RouteDeprecatedError means the endpoint is gone (410) on this server
// version.
type RouteDeprecatedError struct{ APIError }

func (e *RouteDeprecatedError) Error() string {
	return fmt.Sprintf("route %s is deprecated on this server", e.URL)
}

// errorDataUUID extracts a UUID field from the envelope's error_data.
func errorDataUUID(env *ErrorEnvelope, key string) uuid.UUID {
	s, _ := env.ErrorData[key].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
