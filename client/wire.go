package client

import (
	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Wire shapes shared by the messaging, events and smartapp endpoints.

type wireButtonOpts struct {
	Silent    bool   `json:"silent"`
	HSize     *int   `json:"h_size,omitempty"`
	AlertText string `json:"alert_text,omitempty"`
	ShowAlert *bool  `json:"show_alert,omitempty"`
	Handler   string `json:"handler,omitempty"`
}

type wireButton struct {
	Command string                 `json:"command"`
	Label   string                 `json:"label"`
	Data    map[string]interface{} `json:"data"`
	Opts    wireButtonOpts         `json:"opts"`
}

type wireMentionData struct {
	UserHUID    *uuid.UUID `json:"user_huid,omitempty"`
	GroupChatID *uuid.UUID `json:"group_chat_id,omitempty"`
	Name        string     `json:"name,omitempty"`
}

type wireMention struct {
	Type MentionTypeWire  `json:"mention_type"`
	ID   uuid.UUID        `json:"mention_id"`
	Data *wireMentionData `json:"mention_data,omitempty"`
}

// MentionTypeWire mirrors models.MentionType on the wire.
type MentionTypeWire string

type wireFile struct {
	FileName string `json:"file_name"`
	Data     string `json:"data"` // RFC 2397 data URL
	Caption  string `json:"caption,omitempty"`
}

type wireNotificationOpts struct {
	Send     bool `json:"send"`
	ForceDND bool `json:"force_dnd"`
}

type wireMessageOpts struct {
	SilentResponse    bool                 `json:"silent_response_mode"`
	StealthMode       bool                 `json:"stealth_mode"`
	BubblesAutoAdjust bool                 `json:"buttons_auto_adjust"`
	Notifications     wireNotificationOpts `json:"notification_opts"`
}

type wireNotification struct {
	Status   string                 `json:"status"`
	Body     string                 `json:"body"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Bubbles  [][]wireButton         `json:"bubble,omitempty"`
	Keyboard [][]wireButton         `json:"keyboard,omitempty"`
	Mentions []wireMention          `json:"mentions,omitempty"`
}

func buttonsToWire(rows []models.ButtonRow) [][]wireButton {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]wireButton, 0, len(rows))
	for _, row := range rows {
		wireRow := make([]wireButton, 0, len(row))
		for _, b := range row {
			wb := wireButton{
				Command: b.Command,
				Label:   b.Label,
				Data:    b.Data,
				Opts: wireButtonOpts{
					Silent:    b.Silent,
					HSize:     b.WidthRatio,
					AlertText: b.AlertText,
				},
			}
			if b.AlertText != "" {
				show := true
				wb.Opts.ShowAlert = &show
			}
			if b.ProcessOnClient != nil && *b.ProcessOnClient {
				wb.Opts.Handler = "client"
			}
			wireRow = append(wireRow, wb)
		}
		out = append(out, wireRow)
	}
	return out
}

func mentionsToWire(mentions []models.Mention) []wireMention {
	if len(mentions) == 0 {
		return nil
	}
	out := make([]wireMention, 0, len(mentions))
	for _, m := range mentions {
		wm := wireMention{Type: MentionTypeWire(m.Type), ID: m.MentionID}
		if m.EntityID != nil || m.Name != "" {
			data := &wireMentionData{Name: m.Name}
			switch m.Type {
			case models.MentionUser, models.MentionContact:
				data.UserHUID = m.EntityID
			case models.MentionChat, models.MentionChannel:
				data.GroupChatID = m.EntityID
			}
			wm.Data = data
		}
		out = append(out, wm)
	}
	return out
}

func fileToWire(f *models.OutgoingFile) *wireFile {
	if f == nil {
		return nil
	}
	return &wireFile{
		FileName: f.FileName,
		Data:     f.DataURL(),
		Caption:  f.Caption,
	}
}

func notificationFromPayload(p *models.MessagePayload) wireNotification {
	return wireNotification{
		Status:   "ok",
		Body:     p.Body,
		Metadata: p.Metadata,
		Bubbles:  buttonsToWire(p.Bubbles),
		Keyboard: buttonsToWire(p.Keyboard),
		Mentions: mentionsToWire(p.Options.Mentions),
	}
}

func optsFromPayload(p *models.MessagePayload) wireMessageOpts {
	return wireMessageOpts{
		SilentResponse:    p.Options.SilentResponse,
		StealthMode:       p.Options.StealthMode,
		BubblesAutoAdjust: p.Options.MarkupAutoAdjust,
		Notifications: wireNotificationOpts{
			Send:     p.Options.Notifications.Send,
			ForceDND: p.Options.Notifications.ForceDND,
		},
	}
}
