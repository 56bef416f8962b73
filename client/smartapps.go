package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Smartapp route templates.
const (
	SmartAppEventPath        = "/api/v3/botx/smartapps/event"
	SmartAppNotificationPath = "/api/v3/botx/smartapps/notification"
)

type smartAppEventRequest struct {
	Ref         *uuid.UUID             `json:"ref,omitempty"`
	SmartAppID  uuid.UUID              `json:"smartapp_id"`
	GroupChatID uuid.UUID              `json:"group_chat_id"`
	Data        map[string]interface{} `json:"data"`
	Opts        map[string]interface{} `json:"opts,omitempty"`
	APIVersion  int                    `json:"smartapp_api_version"`
	Files       []*wireFile            `json:"async_files,omitempty"`
}

// SendSmartAppEvent pushes a structured event into an embedded
// mini-application session.
func (c *Client) SendSmartAppEvent(ctx context.Context, bind models.Binding, ref *uuid.UUID, chatID uuid.UUID, data, opts map[string]interface{}, apiVersion int, files []*models.OutgoingFile) error {
	req := smartAppEventRequest{
		Ref:         ref,
		SmartAppID:  bind.BotID,
		GroupChatID: chatID,
		Data:        data,
		Opts:        opts,
		APIVersion:  apiVersion,
	}
	for _, f := range files {
		req.Files = append(req.Files, fileToWire(f))
	}

	m := Method{
		Verb:          http.MethodPost,
		Path:          SmartAppEventPath,
		Body:          req,
		ErrorHandlers: messagingErrorHandlers(),
	}
	return c.Perform(ctx, bind, m, nil)
}

type smartAppNotificationRequest struct {
	GroupChatID     uuid.UUID              `json:"group_chat_id"`
	SmartAppCounter int                    `json:"smartapp_counter"`
	Body            string                 `json:"body,omitempty"`
	Opts            map[string]interface{} `json:"opts,omitempty"`
	Meta            map[string]interface{} `json:"meta,omitempty"`
}

// SendSmartAppNotification updates the unread counter badge of a smartapp
// chat.
func (c *Client) SendSmartAppNotification(ctx context.Context, bind models.Binding, chatID uuid.UUID, counter int, body string, opts, meta map[string]interface{}) error {
	m := Method{
		Verb: http.MethodPost,
		Path: SmartAppNotificationPath,
		Body: smartAppNotificationRequest{
			GroupChatID:     chatID,
			SmartAppCounter: counter,
			Body:            body,
			Opts:            opts,
			Meta:            meta,
		},
		ErrorHandlers: messagingErrorHandlers(),
	}
	return c.Perform(ctx, bind, m, nil)
}
