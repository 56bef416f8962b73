package botgo

import (
	"context"

	"github.com/google/uuid"

	"github.com/convexim/botgo/client"
	"github.com/convexim/botgo/models"
)

// The outbound convenience surface. Every method is a thin adapter: it
// resolves the server binding, delegates to the client and returns the
// typed result.

// Answer sends a message into the chat the given message came from.
func (b *Bot) Answer(ctx context.Context, msg *models.UserMessage, payload *models.MessagePayload) (uuid.UUID, error) {
	return b.client.SendMessage(ctx, msg.CommandBinding(), msg.Chat.ID, payload)
}

// AnswerText is Answer for a plain text body.
func (b *Bot) AnswerText(ctx context.Context, msg *models.UserMessage, text string) (uuid.UUID, error) {
	return b.Answer(ctx, msg, &models.MessagePayload{Body: text})
}

// SendMessage posts a message to a chat and returns its sync id.
func (b *Bot) SendMessage(ctx context.Context, botID, chatID uuid.UUID, payload *models.MessagePayload) (uuid.UUID, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return uuid.Nil, err
	}
	return b.client.SendMessage(ctx, bind, chatID, payload)
}

// SendCommandResult posts a command result bound to the originating
// command's sync id.
func (b *Bot) SendCommandResult(ctx context.Context, msg *models.UserMessage, payload *models.MessagePayload) (uuid.UUID, error) {
	return b.client.SendCommandResult(ctx, msg.CommandBinding(), msg.SyncID, payload)
}

// SendNotification posts a notification into several chats at once.
func (b *Bot) SendNotification(ctx context.Context, botID uuid.UUID, chatIDs []uuid.UUID, payload *models.MessagePayload) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.SendNotification(ctx, bind, chatIDs, payload)
}

// EditMessage replaces the content of a previously sent message.
func (b *Bot) EditMessage(ctx context.Context, botID, syncID uuid.UUID, payload *models.MessagePayload) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.EditMessage(ctx, bind, syncID, payload)
}

// ReplyMessage posts a threaded reply to the message identified by syncID.
func (b *Bot) ReplyMessage(ctx context.Context, botID, syncID uuid.UUID, payload *models.MessagePayload) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.ReplyMessage(ctx, bind, syncID, payload)
}

// SendInternalNotification posts a bot-to-bot notification into a chat.
func (b *Bot) SendInternalNotification(ctx context.Context, botID, chatID uuid.UUID, data, opts map[string]interface{}, recipients []uuid.UUID) (uuid.UUID, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return uuid.Nil, err
	}
	return b.client.SendInternalNotification(ctx, bind, chatID, data, opts, recipients)
}

// CreateChat creates a chat and returns its id.
func (b *Bot) CreateChat(ctx context.Context, botID uuid.UUID, name, description string, chatType models.ChatType, members []uuid.UUID, sharedHistory bool) (uuid.UUID, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return uuid.Nil, err
	}
	return b.client.CreateChat(ctx, bind, name, description, chatType, members, sharedHistory)
}

// AddUsersToChat adds users to a chat.
func (b *Bot) AddUsersToChat(ctx context.Context, botID, chatID uuid.UUID, huids []uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.AddUsersToChat(ctx, bind, chatID, huids)
}

// RemoveUsersFromChat removes users from a chat.
func (b *Bot) RemoveUsersFromChat(ctx context.Context, botID, chatID uuid.UUID, huids []uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.RemoveUsersFromChat(ctx, bind, chatID, huids)
}

// PromoteToChatAdmins grants chat admin rights to users.
func (b *Bot) PromoteToChatAdmins(ctx context.Context, botID, chatID uuid.UUID, huids []uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.PromoteToChatAdmins(ctx, bind, chatID, huids)
}

// PinMessage pins a message in a chat.
func (b *Bot) PinMessage(ctx context.Context, botID, chatID, syncID uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.PinMessage(ctx, bind, chatID, syncID)
}

// UnpinMessage removes the pinned message from a chat.
func (b *Bot) UnpinMessage(ctx context.Context, botID, chatID uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.UnpinMessage(ctx, bind, chatID)
}

// EnableStealth turns stealth mode on for a chat.
func (b *Bot) EnableStealth(ctx context.Context, botID, chatID uuid.UUID, opts client.StealthOptions) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.EnableStealth(ctx, bind, chatID, opts)
}

// DisableStealth turns stealth mode off for a chat.
func (b *Bot) DisableStealth(ctx context.Context, botID, chatID uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.DisableStealth(ctx, bind, chatID)
}

// ChatInfo fetches the full description of one chat.
func (b *Bot) ChatInfo(ctx context.Context, botID, chatID uuid.UUID) (*client.ChatInfo, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.ChatInfoByID(ctx, bind, chatID)
}

// ListChats returns every chat the bot participates in on its server.
func (b *Bot) ListChats(ctx context.Context, botID uuid.UUID) ([]client.ChatInfo, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.ListChats(ctx, bind)
}

// UploadFile uploads a file into a chat and returns its descriptor.
func (b *Bot) UploadFile(ctx context.Context, botID, chatID uuid.UUID, file *models.OutgoingFile) (*models.AsyncFile, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.UploadFile(ctx, bind, chatID, file)
}

// DownloadFile fetches the raw content of a stored file.
func (b *Bot) DownloadFile(ctx context.Context, botID, chatID, fileID uuid.UUID) ([]byte, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.DownloadFile(ctx, bind, chatID, fileID)
}

// SearchUserByHUID finds a user profile by messenger id.
func (b *Bot) SearchUserByHUID(ctx context.Context, botID, huid uuid.UUID) (*client.UserFromSearch, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.SearchUserByHUID(ctx, bind, huid)
}

// SearchUserByEmail finds a user profile by email address.
func (b *Bot) SearchUserByEmail(ctx context.Context, botID uuid.UUID, email string) (*client.UserFromSearch, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.SearchUserByEmail(ctx, bind, email)
}

// SearchUserByLogin finds a user profile by AD login and domain.
func (b *Bot) SearchUserByLogin(ctx context.Context, botID uuid.UUID, adLogin, adDomain string) (*client.UserFromSearch, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.SearchUserByLogin(ctx, bind, adLogin, adDomain)
}

// CreateStickerPack creates an empty named sticker pack.
func (b *Bot) CreateStickerPack(ctx context.Context, botID uuid.UUID, name string) (*client.StickerPack, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.CreateStickerPack(ctx, bind, name)
}

// GetStickerPack fetches a sticker pack with its stickers.
func (b *Bot) GetStickerPack(ctx context.Context, botID, packID uuid.UUID) (*client.StickerPack, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.GetStickerPack(ctx, bind, packID)
}

// ListStickerPacks returns the bot's sticker packs.
func (b *Bot) ListStickerPacks(ctx context.Context, botID uuid.UUID) ([]client.StickerPack, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.ListStickerPacks(ctx, bind)
}

// RenameStickerPack updates a pack name.
func (b *Bot) RenameStickerPack(ctx context.Context, botID, packID uuid.UUID, name string) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.RenameStickerPack(ctx, bind, packID, name)
}

// DeleteStickerPack removes a sticker pack.
func (b *Bot) DeleteStickerPack(ctx context.Context, botID, packID uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.DeleteStickerPack(ctx, bind, packID)
}

// AddSticker adds one sticker image to a pack.
func (b *Bot) AddSticker(ctx context.Context, botID, packID uuid.UUID, emoji string, image *models.OutgoingFile) (*client.Sticker, error) {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return nil, err
	}
	return b.client.AddSticker(ctx, bind, packID, emoji, image)
}

// DeleteSticker removes one sticker from a pack.
func (b *Bot) DeleteSticker(ctx context.Context, botID, packID, stickerID uuid.UUID) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.DeleteSticker(ctx, bind, packID, stickerID)
}

// SendSmartAppEvent pushes a structured event into a smartapp session.
func (b *Bot) SendSmartAppEvent(ctx context.Context, botID uuid.UUID, ref *uuid.UUID, chatID uuid.UUID, data, opts map[string]interface{}, apiVersion int, files []*models.OutgoingFile) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.SendSmartAppEvent(ctx, bind, ref, chatID, data, opts, apiVersion, files)
}

// SendSmartAppNotification updates the unread counter of a smartapp chat.
func (b *Bot) SendSmartAppNotification(ctx context.Context, botID, chatID uuid.UUID, counter int, body string, opts, meta map[string]interface{}) error {
	bind, err := b.bindingForBot(botID)
	if err != nil {
		return err
	}
	return b.client.SendSmartAppNotification(ctx, bind, chatID, counter, body, opts, meta)
}
