package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/convexim/botgo/logger"
)

// ProtoVersion is the webhook protocol generation this decoder understands.
const ProtoVersion = 4

const (
	commandTypeUser   = "user"
	commandTypeSystem = "system"
)

// Decoder turns raw webhook payloads into Command values.
type Decoder struct {
	log *logger.Logger
}

// NewDecoder creates a decoder. A nil logger defaults to the package
// default (stderr at INFO).
func NewDecoder(log *logger.Logger) *Decoder {
	if log == nil {
		log = logger.Default()
	}
	return &Decoder{log: log}
}

// wire shapes, matching the webhook JSON.

type wirePayload struct {
	BotID        uuid.UUID        `json:"bot_id"`
	SyncID       uuid.UUID        `json:"sync_id"`
	SourceSyncID *uuid.UUID       `json:"source_sync_id"`
	Command      wireCommand      `json:"command"`
	From         wireFrom         `json:"from"`
	Attachments  []wireAttachment `json:"attachments"`
	AsyncFiles   []wireAsyncFile  `json:"async_files"`
	Entities     []wireEntity     `json:"entities"`
	ProtoVersion int              `json:"proto_version"`
}

type wireCommand struct {
	Body        string                 `json:"body"`
	CommandType string                 `json:"command_type"`
	Data        json.RawMessage        `json:"data"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type wireDeviceMeta struct {
	Pushes      *bool                  `json:"pushes"`
	Timezone    string                 `json:"timezone"`
	Permissions map[string]interface{} `json:"permissions"`
}

type wireFrom struct {
	Host        string          `json:"host"`
	ChatType    ChatType        `json:"chat_type"`
	UserHUID    *uuid.UUID      `json:"user_huid"`
	UserUDID    *uuid.UUID      `json:"user_udid"`
	ADLogin     string          `json:"ad_login"`
	ADDomain    string          `json:"ad_domain"`
	Username    string          `json:"username"`
	GroupChatID *uuid.UUID      `json:"group_chat_id"`
	IsAdmin     *bool           `json:"is_admin"`
	IsCreator   *bool           `json:"is_creator"`
	Device      string          `json:"device"`
	Platform    ClientPlatform  `json:"platform"`
	AppVersion  string          `json:"app_version"`
	Locale      string          `json:"locale"`
	DeviceMeta  *wireDeviceMeta `json:"device_meta"`
}

type wireAttachment struct {
	Type AttachmentKind  `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wireAsyncFile struct {
	Type     AttachmentKind `json:"type"`
	FileID   uuid.UUID      `json:"file_id"`
	FileName string         `json:"file_name"`
	FileSize int64          `json:"file_size"`
	MimeType string         `json:"file_mime_type"`
	Duration int            `json:"duration"`
}

type wireEntity struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a webhook JSON object into a typed command. The raw payload
// is retained on the result.
func (d *Decoder) Decode(raw []byte) (Command, error) {
	var p wirePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing webhook payload: %w", err)
	}
	if p.ProtoVersion != ProtoVersion {
		return nil, fmt.Errorf("unsupported proto_version %d, want %d", p.ProtoVersion, ProtoVersion)
	}
	if p.BotID == uuid.Nil {
		return nil, fmt.Errorf("webhook payload carries no bot_id")
	}

	bind := Binding{BotID: p.BotID, Host: p.From.Host}

	switch p.Command.CommandType {
	case commandTypeUser:
		return d.decodeUserMessage(bind, raw, &p)
	case commandTypeSystem:
		return d.decodeSystemEvent(bind, raw, &p)
	default:
		return nil, fmt.Errorf("unknown command_type %q", p.Command.CommandType)
	}
}

func senderFromWire(f *wireFrom) Sender {
	s := Sender{
		HUID:       f.UserHUID,
		UDID:       f.UserUDID,
		ADLogin:    f.ADLogin,
		ADDomain:   f.ADDomain,
		Username:   f.Username,
		IsAdmin:    f.IsAdmin,
		IsCreator:  f.IsCreator,
		Device:     f.Device,
		Platform:   f.Platform,
		AppVersion: f.AppVersion,
		Locale:     f.Locale,
	}
	if f.DeviceMeta != nil {
		s.DeviceMeta = &DeviceMeta{
			Pushes:      f.DeviceMeta.Pushes,
			Timezone:    f.DeviceMeta.Timezone,
			Permissions: f.DeviceMeta.Permissions,
		}
	}
	return s
}

func (d *Decoder) decodeUserMessage(bind Binding, raw []byte, p *wirePayload) (Command, error) {
	if p.From.GroupChatID == nil {
		return nil, fmt.Errorf("user command carries no group_chat_id")
	}

	msg := newUserMessage(bind, raw)
	msg.SyncID = p.SyncID
	msg.SourceSyncID = p.SourceSyncID
	msg.Body = p.Command.Body
	msg.Metadata = p.Command.Metadata
	msg.Sender = senderFromWire(&p.From)
	msg.Chat = Chat{ID: *p.From.GroupChatID, Type: p.From.ChatType}

	if len(p.Command.Data) > 0 {
		if err := json.Unmarshal(p.Command.Data, &msg.Data); err != nil {
			return nil, fmt.Errorf("parsing command data: %w", err)
		}
	}

	if len(p.Attachments) > 0 {
		if err := d.attachFirst(msg, p.Attachments[0]); err != nil {
			return nil, err
		}
	}
	if len(p.AsyncFiles) > 0 {
		f := asyncFileFromWire(p.AsyncFiles[0])
		msg.AsyncFile = &f
	}

	if err := d.classifyEntities(msg, p.Entities); err != nil {
		return nil, err
	}
	return msg, nil
}

// attachFirst fills the typed attachment slot from the first wire
// attachment. Unknown attachment types are logged and discarded.
func (d *Decoder) attachFirst(msg *UserMessage, a wireAttachment) error {
	switch a.Type {
	case AttachmentImage, AttachmentVideo, AttachmentDocument, AttachmentVoice:
		var data struct {
			Content  string `json:"content"`
			FileName string `json:"file_name"`
			Duration int    `json:"duration"`
		}
		if err := json.Unmarshal(a.Data, &data); err != nil {
			return fmt.Errorf("parsing %s attachment: %w", a.Type, err)
		}
		content, err := decodeDataURL(data.Content)
		if err != nil {
			return fmt.Errorf("parsing %s attachment content: %w", a.Type, err)
		}
		msg.File = &AttachmentFile{
			Kind:     a.Type,
			FileName: data.FileName,
			Content:  content,
			Duration: data.Duration,
		}
	case AttachmentLocationKind:
		var data struct {
			Name      string `json:"location_name"`
			Address   string `json:"location_address"`
			Latitude  string `json:"location_lat"`
			Longitude string `json:"location_lng"`
		}
		if err := json.Unmarshal(a.Data, &data); err != nil {
			return fmt.Errorf("parsing location attachment: %w", err)
		}
		msg.Location = &AttachmentLocation{
			Name:      data.Name,
			Address:   data.Address,
			Latitude:  data.Latitude,
			Longitude: data.Longitude,
		}
	case AttachmentContactKind:
		var data struct {
			Name string `json:"contact_name"`
		}
		if err := json.Unmarshal(a.Data, &data); err != nil {
			return fmt.Errorf("parsing contact attachment: %w", err)
		}
		msg.Contact = &AttachmentContact{Name: data.Name}
	case AttachmentLinkKind:
		var data struct {
			URL     string `json:"url"`
			Title   string `json:"url_title"`
			Preview string `json:"url_preview"`
			Text    string `json:"url_text"`
		}
		if err := json.Unmarshal(a.Data, &data); err != nil {
			return fmt.Errorf("parsing link attachment: %w", err)
		}
		msg.Link = &AttachmentLink{
			URL:     data.URL,
			Title:   data.Title,
			Preview: data.Preview,
			Text:    data.Text,
		}
	default:
		d.log.Warn("dropping attachment of unknown type %q", a.Type)
	}
	return nil
}

func (d *Decoder) classifyEntities(msg *UserMessage, entities []wireEntity) error {
	for _, e := range entities {
		switch e.Type {
		case "mention":
			m, err := mentionFromWire(e.Data)
			if err != nil {
				return err
			}
			msg.Mentions = append(msg.Mentions, m)
		case "forward":
			if msg.Forward != nil {
				return fmt.Errorf("message carries more than one forward entity")
			}
			fwd, err := forwardFromWire(e.Data)
			if err != nil {
				return err
			}
			msg.Forward = fwd
		case "reply":
			if msg.Reply != nil {
				return fmt.Errorf("message carries more than one reply entity")
			}
			reply, err := replyFromWire(e.Data)
			if err != nil {
				return err
			}
			msg.Reply = reply
		default:
			d.log.Warn("dropping entity of unknown type %q", e.Type)
		}
	}
	return nil
}

func mentionFromWire(raw json.RawMessage) (Mention, error) {
	var data struct {
		MentionType MentionType `json:"mention_type"`
		MentionID   uuid.UUID   `json:"mention_id"`
		MentionData *struct {
			UserHUID    *uuid.UUID `json:"user_huid"`
			GroupChatID *uuid.UUID `json:"group_chat_id"`
			Name        string     `json:"name"`
		} `json:"mention_data"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Mention{}, fmt.Errorf("parsing mention entity: %w", err)
	}
	m := Mention{Type: data.MentionType, MentionID: data.MentionID}
	if data.MentionData != nil {
		m.Name = data.MentionData.Name
		switch data.MentionType {
		case MentionUser, MentionContact:
			m.EntityID = data.MentionData.UserHUID
		case MentionChat, MentionChannel:
			m.EntityID = data.MentionData.GroupChatID
		}
	}
	return m, nil
}

func forwardFromWire(raw json.RawMessage) (*Forward, error) {
	var data struct {
		GroupChatID      uuid.UUID `json:"group_chat_id"`
		SenderHUID       uuid.UUID `json:"sender_huid"`
		ForwardType      ChatType  `json:"forward_type"`
		SourceChatName   string    `json:"source_chat_name"`
		SourceSyncID     uuid.UUID `json:"source_sync_id"`
		SourceInsertedAt time.Time `json:"source_inserted_at"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing forward entity: %w", err)
	}
	return &Forward{
		ChatID:           data.GroupChatID,
		SenderHUID:       data.SenderHUID,
		ChatType:         data.ForwardType,
		ChatName:         data.SourceChatName,
		SourceSyncID:     data.SourceSyncID,
		SourceInsertedAt: data.SourceInsertedAt,
	}, nil
}

func replyFromWire(raw json.RawMessage) (*Reply, error) {
	var data struct {
		SourceSyncID   uuid.UUID `json:"source_sync_id"`
		Body           string    `json:"body"`
		Sender         uuid.UUID `json:"sender"`
		ReplyType      ChatType  `json:"reply_type"`
		SourceChatName string    `json:"source_chat_name"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing reply entity: %w", err)
	}
	return &Reply{
		SyncID:     data.SourceSyncID,
		Body:       data.Body,
		SenderHUID: data.Sender,
		ChatType:   data.ReplyType,
		ChatName:   data.SourceChatName,
	}, nil
}

func asyncFileFromWire(f wireAsyncFile) AsyncFile {
	return AsyncFile{
		Kind:     f.Type,
		FileID:   f.FileID,
		FileName: f.FileName,
		FileSize: f.FileSize,
		MimeType: f.MimeType,
		Duration: f.Duration,
	}
}

func (d *Decoder) decodeSystemEvent(bind Binding, raw []byte, p *wirePayload) (Command, error) {
	kind := EventKind(p.Command.Body)

	switch kind {
	case EventChatCreated:
		if p.From.UserHUID != nil {
			return nil, fmt.Errorf("%s event must not identify a user", kind)
		}
		var data struct {
			GroupChatID uuid.UUID `json:"group_chat_id"`
			ChatType    ChatType  `json:"chat_type"`
			Name        string    `json:"name"`
			Creator     uuid.UUID `json:"creator"`
			Members     []struct {
				HUID  uuid.UUID      `json:"huid"`
				Kind  ChatMemberKind `json:"user_kind"`
				Name  string         `json:"name"`
				Admin bool           `json:"admin"`
			} `json:"members"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		ev := &ChatCreatedEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			ChatID:      data.GroupChatID,
			ChatName:    data.Name,
			ChatType:    data.ChatType,
			Creator:     data.Creator,
		}
		for _, m := range data.Members {
			ev.Members = append(ev.Members, ChatMember{
				HUID: m.HUID, Kind: m.Kind, Name: m.Name, IsAdmin: m.Admin,
			})
		}
		return ev, nil

	case EventAddedToChat:
		if p.From.UserHUID != nil {
			return nil, fmt.Errorf("%s event must not identify a user", kind)
		}
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			AddedMembers []uuid.UUID `json:"added_members"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		return &AddedToChatEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Chat:        chat,
			HUIDs:       data.AddedMembers,
		}, nil

	case EventDeletedFromChat:
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			DeletedMembers []uuid.UUID `json:"deleted_members"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		return &DeletedFromChatEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Chat:        chat,
			HUIDs:       data.DeletedMembers,
		}, nil

	case EventLeftFromChat:
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			LeftMembers []uuid.UUID `json:"left_members"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		return &LeftFromChatEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Chat:        chat,
			HUIDs:       data.LeftMembers,
		}, nil

	case EventCTSLogin, EventCTSLogout:
		var data struct {
			UserHUID uuid.UUID `json:"user_huid"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		base := commandBase{Bind: bind, Raw: raw}
		if kind == EventCTSLogin {
			return &CTSLoginEvent{commandBase: base, HUID: data.UserHUID}, nil
		}
		return &CTSLogoutEvent{commandBase: base, HUID: data.UserHUID}, nil

	case EventInternalBotNotification:
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			Data map[string]interface{} `json:"data"`
			Opts map[string]interface{} `json:"opts"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		return &InternalBotNotificationEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Chat:        chat.ID,
			Data:        data.Data,
			Opts:        data.Opts,
		}, nil

	case EventSmartAppEvent:
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			Ref        *uuid.UUID             `json:"ref"`
			SmartAppID uuid.UUID              `json:"smartapp_id"`
			Data       map[string]interface{} `json:"data"`
			Opts       map[string]interface{} `json:"opts"`
			APIVersion int                    `json:"smartapp_api_version"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		ev := &SmartAppEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Ref:         data.Ref,
			SmartAppID:  data.SmartAppID,
			APIVersion:  data.APIVersion,
			Chat:        chat,
			Sender:      senderFromWire(&p.From),
			Data:        data.Data,
			Opts:        data.Opts,
		}
		for _, f := range p.AsyncFiles {
			ev.Files = append(ev.Files, asyncFileFromWire(f))
		}
		return ev, nil

	case EventFileTransfer:
		chat, err := eventChat(p)
		if err != nil {
			return nil, err
		}
		var data struct {
			File *wireAsyncFile `json:"file"`
		}
		if err := json.Unmarshal(p.Command.Data, &data); err != nil {
			return nil, fmt.Errorf("parsing %s data: %w", kind, err)
		}
		if data.File == nil {
			return nil, fmt.Errorf("%s event carries no file", kind)
		}
		return &FileTransferEvent{
			commandBase: commandBase{Bind: bind, Raw: raw},
			Chat:        chat,
			File:        asyncFileFromWire(*data.File),
		}, nil

	default:
		return nil, fmt.Errorf("unknown system event %q", p.Command.Body)
	}
}

func eventChat(p *wirePayload) (Chat, error) {
	if p.From.GroupChatID == nil {
		return Chat{}, fmt.Errorf("%s event carries no group_chat_id", p.Command.Body)
	}
	return Chat{ID: *p.From.GroupChatID, Type: p.From.ChatType}, nil
}

// decodeDataURL extracts the payload of an RFC 2397 data URL. Plain base64
// without the data: prefix is accepted as well.
func decodeDataURL(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
