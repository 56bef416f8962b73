package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Chat route templates.
const (
	ChatCreatePath         = "/api/v3/botx/chats/create"
	ChatAddUserPath        = "/api/v3/botx/chats/add_user"
	ChatRemoveUserPath     = "/api/v3/botx/chats/remove_user"
	ChatAddAdminPath       = "/api/v3/botx/chats/add_admin"
	ChatPinMessagePath     = "/api/v3/botx/chats/pin_message"
	ChatUnpinMessagePath   = "/api/v3/botx/chats/unpin_message"
	ChatStealthSetPath     = "/api/v3/botx/chats/stealth_set"
	ChatStealthDisablePath = "/api/v3/botx/chats/stealth_disable"
	ChatInfoPath           = "/api/v3/botx/chats/info"
	ChatListPath           = "/api/v3/botx/chats/list"
)

// ChatInfoMember is one member in a chat info response.
type ChatInfoMember struct {
	HUID    uuid.UUID             `json:"user_huid"`
	Kind    models.ChatMemberKind `json:"user_kind"`
	IsAdmin bool                  `json:"admin"`
}

// ChatInfo is the full description of one chat.
type ChatInfo struct {
	ChatID      uuid.UUID        `json:"group_chat_id"`
	ChatType    models.ChatType  `json:"chat_type"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Creator     uuid.UUID        `json:"creator"`
	InsertedAt  time.Time        `json:"inserted_at"`
	Members     []ChatInfoMember `json:"members"`
}

// chatErrorHandlers classifies the chat-lifecycle error envelopes.
func chatErrorHandlers(botID uuid.UUID) map[int][]ErrorHandler {
	return map[int][]ErrorHandler{
		http.StatusBadRequest: {func(env *ErrorEnvelope, rc RequestContext) error {
			if env.Reason != "chat_members_not_modifiable" {
				return nil
			}
			return &ChatIsNotModifiableError{APIError{rc}}
		}},
		http.StatusForbidden: {
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "bot_is_not_admin" {
					return nil
				}
				return &BotIsNotAdminError{
					APIError: APIError{rc},
					BotID:    botID,
					ChatID:   errorDataUUID(env, "group_chat_id"),
				}
			},
			func(env *ErrorEnvelope, rc RequestContext) error {
				return &NoPermissionError{APIError{rc}}
			},
		},
		http.StatusNotFound: {func(env *ErrorEnvelope, rc RequestContext) error {
			return &ChatNotFoundError{
				APIError: APIError{rc},
				ChatID:   errorDataUUID(env, "group_chat_id"),
			}
		}},
	}
}

type createChatRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ChatType    models.ChatType `json:"chat_type"`
	Members     []uuid.UUID     `json:"members"`
	SharedHist  bool            `json:"shared_history"`
}

type createChatResult struct {
	ChatID uuid.UUID `json:"chat_id"`
}

// CreateChat creates a chat with the given members and returns its id.
func (c *Client) CreateChat(ctx context.Context, bind models.Binding, name, description string, chatType models.ChatType, members []uuid.UUID, sharedHistory bool) (uuid.UUID, error) {
	handlers := chatErrorHandlers(bind.BotID)
	handlers[http.StatusForbidden] = []ErrorHandler{
		func(env *ErrorEnvelope, rc RequestContext) error {
			if env.Reason != "chat_creation_is_prohibited" {
				return nil
			}
			return &ChatCreationDisallowedError{APIError: APIError{rc}, BotID: bind.BotID}
		},
		func(env *ErrorEnvelope, rc RequestContext) error {
			return &NoPermissionError{APIError{rc}}
		},
	}
	handlers[http.StatusUnprocessableEntity] = []ErrorHandler{
		func(env *ErrorEnvelope, rc RequestContext) error {
			return &ChatCreationError{APIError{rc}}
		},
	}

	m := Method{
		Verb: http.MethodPost,
		Path: ChatCreatePath,
		Body: createChatRequest{
			Name:        name,
			Description: description,
			ChatType:    chatType,
			Members:     members,
			SharedHist:  sharedHistory,
		},
		ErrorHandlers: handlers,
	}

	var result createChatResult
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return uuid.Nil, err
	}
	return result.ChatID, nil
}

type chatMembersRequest struct {
	GroupChatID uuid.UUID   `json:"group_chat_id"`
	UserHUIDs   []uuid.UUID `json:"user_huids"`
}

// AddUsersToChat adds users to a chat.
func (c *Client) AddUsersToChat(ctx context.Context, bind models.Binding, chatID uuid.UUID, huids []uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatAddUserPath,
		Body:          chatMembersRequest{GroupChatID: chatID, UserHUIDs: huids},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

// RemoveUsersFromChat removes users from a chat.
func (c *Client) RemoveUsersFromChat(ctx context.Context, bind models.Binding, chatID uuid.UUID, huids []uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatRemoveUserPath,
		Body:          chatMembersRequest{GroupChatID: chatID, UserHUIDs: huids},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

// PromoteToChatAdmins grants chat admin rights to users.
func (c *Client) PromoteToChatAdmins(ctx context.Context, bind models.Binding, chatID uuid.UUID, huids []uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatAddAdminPath,
		Body:          chatMembersRequest{GroupChatID: chatID, UserHUIDs: huids},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

type pinMessageRequest struct {
	GroupChatID uuid.UUID `json:"chat_id"`
	SyncID      uuid.UUID `json:"sync_id"`
}

// PinMessage pins a message in a chat.
func (c *Client) PinMessage(ctx context.Context, bind models.Binding, chatID, syncID uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatPinMessagePath,
		Body:          pinMessageRequest{GroupChatID: chatID, SyncID: syncID},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

type unpinMessageRequest struct {
	GroupChatID uuid.UUID `json:"chat_id"`
}

// UnpinMessage removes the pinned message from a chat.
func (c *Client) UnpinMessage(ctx context.Context, bind models.Binding, chatID uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatUnpinMessagePath,
		Body:          unpinMessageRequest{GroupChatID: chatID},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

// StealthOptions controls message burn timers in stealth mode.
type StealthOptions struct {
	DisableWeb      bool `json:"disable_web"`
	BurnInSeconds   *int `json:"burn_in,omitempty"`
	ExpireInSeconds *int `json:"expire_in,omitempty"`
}

type stealthSetRequest struct {
	GroupChatID uuid.UUID `json:"group_chat_id"`
	StealthOptions
}

// EnableStealth turns stealth mode on for a chat.
func (c *Client) EnableStealth(ctx context.Context, bind models.Binding, chatID uuid.UUID, opts StealthOptions) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatStealthSetPath,
		Body:          stealthSetRequest{GroupChatID: chatID, StealthOptions: opts},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

type stealthDisableRequest struct {
	GroupChatID uuid.UUID `json:"group_chat_id"`
}

// DisableStealth turns stealth mode off for a chat.
func (c *Client) DisableStealth(ctx context.Context, bind models.Binding, chatID uuid.UUID) error {
	m := Method{
		Verb:          http.MethodPost,
		Path:          ChatStealthDisablePath,
		Body:          stealthDisableRequest{GroupChatID: chatID},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	return c.Perform(ctx, bind, m, nil)
}

// ChatInfoByID fetches the full description of one chat.
func (c *Client) ChatInfoByID(ctx context.Context, bind models.Binding, chatID uuid.UUID) (*ChatInfo, error) {
	m := Method{
		Verb:          http.MethodGet,
		Path:          ChatInfoPath,
		Query:         url.Values{"group_chat_id": {chatID.String()}},
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	var info ChatInfo
	if err := c.Perform(ctx, bind, m, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListChats returns every chat the bot participates in on the server.
func (c *Client) ListChats(ctx context.Context, bind models.Binding) ([]ChatInfo, error) {
	m := Method{
		Verb:          http.MethodGet,
		Path:          ChatListPath,
		ErrorHandlers: chatErrorHandlers(bind.BotID),
	}
	var chats []ChatInfo
	if err := c.Perform(ctx, bind, m, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}
