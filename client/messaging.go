package client

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Messaging route templates.
const (
	CommandCallbackPath      = "/api/v3/botx/command/callback"
	DirectNotificationPath   = "/api/v3/botx/notification/callback/direct"
	NotificationPath         = "/api/v3/botx/notification/callback"
	EditEventPath            = "/api/v3/botx/events/edit_event"
	ReplyEventPath           = "/api/v3/botx/events/reply_event"
	InternalNotificationPath = "/api/v4/botx/notifications/internal"
)

type syncIDResult struct {
	SyncID uuid.UUID `json:"sync_id"`
}

// messagingErrorHandlers is the shared classification table for messaging
// endpoints.
func messagingErrorHandlers() map[int][]ErrorHandler {
	return map[int][]ErrorHandler{
		http.StatusBadRequest: {func(env *ErrorEnvelope, rc RequestContext) error {
			return &MessagingError{APIError{rc}}
		}},
		http.StatusNotFound: {func(env *ErrorEnvelope, rc RequestContext) error {
			if env.Reason != "chat_not_found" {
				return nil
			}
			return &ChatNotFoundError{
				APIError: APIError{rc},
				ChatID:   errorDataUUID(env, "group_chat_id"),
			}
		}},
		http.StatusForbidden: {func(env *ErrorEnvelope, rc RequestContext) error {
			return &NoPermissionError{APIError{rc}}
		}},
	}
}

type directNotificationRequest struct {
	GroupChatID  uuid.UUID        `json:"group_chat_id"`
	Recipients   []uuid.UUID      `json:"recipients,omitempty"`
	Notification wireNotification `json:"notification"`
	File         *wireFile        `json:"file,omitempty"`
	Opts         wireMessageOpts  `json:"opts"`
}

// SendMessage posts a message to a chat and returns the new sync id.
func (c *Client) SendMessage(ctx context.Context, bind models.Binding, chatID uuid.UUID, payload *models.MessagePayload) (uuid.UUID, error) {
	if utf8.RuneCountInString(payload.Body) > models.MaxMessageBodyLength {
		return uuid.Nil, fmt.Errorf("message body exceeds %d characters", models.MaxMessageBodyLength)
	}
	m := Method{
		Verb: http.MethodPost,
		Path: DirectNotificationPath,
		Body: directNotificationRequest{
			GroupChatID:  chatID,
			Recipients:   payload.Options.Recipients,
			Notification: notificationFromPayload(payload),
			File:         fileToWire(payload.File),
			Opts:         optsFromPayload(payload),
		},
		ErrorHandlers: messagingErrorHandlers(),
	}

	var result syncIDResult
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return uuid.Nil, err
	}
	return result.SyncID, nil
}

type commandResultRequest struct {
	SyncID     uuid.UUID        `json:"sync_id"`
	Recipients []uuid.UUID      `json:"recipients,omitempty"`
	Result     wireNotification `json:"result"`
	File       *wireFile        `json:"file,omitempty"`
	Opts       wireMessageOpts  `json:"opts"`
}

// SendCommandResult posts a command result bound to the originating sync id.
func (c *Client) SendCommandResult(ctx context.Context, bind models.Binding, syncID uuid.UUID, payload *models.MessagePayload) (uuid.UUID, error) {
	m := Method{
		Verb: http.MethodPost,
		Path: CommandCallbackPath,
		Body: commandResultRequest{
			SyncID:     syncID,
			Recipients: payload.Options.Recipients,
			Result:     notificationFromPayload(payload),
			File:       fileToWire(payload.File),
			Opts:       optsFromPayload(payload),
		},
		ErrorHandlers: messagingErrorHandlers(),
	}

	var result syncIDResult
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return uuid.Nil, err
	}
	return result.SyncID, nil
}

type broadcastNotificationRequest struct {
	GroupChatIDs []uuid.UUID      `json:"group_chat_ids"`
	Notification wireNotification `json:"notification"`
	Opts         wireMessageOpts  `json:"opts"`
}

// SendNotification posts a notification to several chats at once.
func (c *Client) SendNotification(ctx context.Context, bind models.Binding, chatIDs []uuid.UUID, payload *models.MessagePayload) error {
	m := Method{
		Verb: http.MethodPost,
		Path: NotificationPath,
		Body: broadcastNotificationRequest{
			GroupChatIDs: chatIDs,
			Notification: notificationFromPayload(payload),
			Opts:         optsFromPayload(payload),
		},
		ErrorHandlers: messagingErrorHandlers(),
	}
	return c.Perform(ctx, bind, m, nil)
}

type editEventRequest struct {
	SyncID  uuid.UUID        `json:"sync_id"`
	Payload wireNotification `json:"payload"`
	File    *wireFile        `json:"file,omitempty"`
	Opts    wireMessageOpts  `json:"opts"`
}

// EditMessage replaces the body, markup and file of a previously sent
// message.
func (c *Client) EditMessage(ctx context.Context, bind models.Binding, syncID uuid.UUID, payload *models.MessagePayload) error {
	m := Method{
		Verb: http.MethodPost,
		Path: EditEventPath,
		Body: editEventRequest{
			SyncID:  syncID,
			Payload: notificationFromPayload(payload),
			File:    fileToWire(payload.File),
			Opts:    optsFromPayload(payload),
		},
		ErrorHandlers: messagingErrorHandlers(),
	}
	return c.Perform(ctx, bind, m, nil)
}

type replyEventRequest struct {
	SourceSyncID uuid.UUID        `json:"source_sync_id"`
	Reply        wireNotification `json:"reply"`
	File         *wireFile        `json:"file,omitempty"`
	Opts         wireMessageOpts  `json:"opts"`
}

// ReplyMessage posts a threaded reply to the message identified by syncID.
func (c *Client) ReplyMessage(ctx context.Context, bind models.Binding, syncID uuid.UUID, payload *models.MessagePayload) error {
	m := Method{
		Verb: http.MethodPost,
		Path: ReplyEventPath,
		Body: replyEventRequest{
			SourceSyncID: syncID,
			Reply:        notificationFromPayload(payload),
			File:         fileToWire(payload.File),
			Opts:         optsFromPayload(payload),
		},
		ErrorHandlers: messagingErrorHandlers(),
	}
	return c.Perform(ctx, bind, m, nil)
}

type internalNotificationRequest struct {
	GroupChatID uuid.UUID              `json:"group_chat_id"`
	Recipients  []uuid.UUID            `json:"recipients,omitempty"`
	Data        map[string]interface{} `json:"data"`
	Opts        map[string]interface{} `json:"opts,omitempty"`
}

// SendInternalNotification posts a bot-to-bot notification into a chat and
// returns its sync id.
func (c *Client) SendInternalNotification(ctx context.Context, bind models.Binding, chatID uuid.UUID, data, opts map[string]interface{}, recipients []uuid.UUID) (uuid.UUID, error) {
	m := Method{
		Verb: http.MethodPost,
		Path: InternalNotificationPath,
		Body: internalNotificationRequest{
			GroupChatID: chatID,
			Recipients:  recipients,
			Data:        data,
			Opts:        opts,
		},
		ErrorHandlers: messagingErrorHandlers(),
	}

	var result syncIDResult
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return uuid.Nil, err
	}
	return result.SyncID, nil
}
