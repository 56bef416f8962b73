package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// Sticker route templates.
const (
	StickerPacksPath  = "/api/v3/botx/stickers/packs"
	StickerPackPath   = "/api/v3/botx/stickers/packs/{pack_id}"
	StickerAddPath    = "/api/v3/botx/stickers/packs/{pack_id}/stickers"
	StickerDeletePath = "/api/v3/botx/stickers/packs/{pack_id}/stickers/{sticker_id}"
)

// Sticker is one sticker inside a pack.
type Sticker struct {
	ID    uuid.UUID `json:"id"`
	Emoji string    `json:"emoji"`
	Link  string    `json:"link"`
}

// StickerPack is a named collection of stickers.
type StickerPack struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Public   bool      `json:"public"`
	Stickers []Sticker `json:"stickers"`
}

func stickerErrorHandlers(packID uuid.UUID) map[int][]ErrorHandler {
	return map[int][]ErrorHandler{
		http.StatusNotFound: {
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "pack_not_found" {
					return nil
				}
				return &StickerPackNotFoundError{APIError: APIError{rc}, PackID: packID}
			},
			func(env *ErrorEnvelope, rc RequestContext) error {
				return &StickerPackOrStickerNotFoundError{APIError{rc}}
			},
		},
		http.StatusBadRequest: {
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "malformed_emoji" {
					return nil
				}
				return &InvalidEmojiError{APIError{rc}}
			},
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "malformed_image" {
					return nil
				}
				return &InvalidImageError{APIError{rc}}
			},
		},
	}
}

type createStickerPackRequest struct {
	Name string `json:"name"`
}

// CreateStickerPack creates an empty named sticker pack.
func (c *Client) CreateStickerPack(ctx context.Context, bind models.Binding, name string) (*StickerPack, error) {
	m := Method{
		Verb:          http.MethodPost,
		Path:          StickerPacksPath,
		Body:          createStickerPackRequest{Name: name},
		ErrorHandlers: stickerErrorHandlers(uuid.Nil),
	}
	var pack StickerPack
	if err := c.Perform(ctx, bind, m, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// GetStickerPack fetches a sticker pack with its stickers.
func (c *Client) GetStickerPack(ctx context.Context, bind models.Binding, packID uuid.UUID) (*StickerPack, error) {
	m := Method{
		Verb:          http.MethodGet,
		Path:          StickerPackPath,
		PathParams:    map[string]string{"pack_id": packID.String()},
		ErrorHandlers: stickerErrorHandlers(packID),
	}
	var pack StickerPack
	if err := c.Perform(ctx, bind, m, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// ListStickerPacks returns the bot's sticker packs.
func (c *Client) ListStickerPacks(ctx context.Context, bind models.Binding) ([]StickerPack, error) {
	m := Method{
		Verb:          http.MethodGet,
		Path:          StickerPacksPath,
		ErrorHandlers: stickerErrorHandlers(uuid.Nil),
	}
	var result struct {
		Packs []StickerPack `json:"packs"`
	}
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return nil, err
	}
	return result.Packs, nil
}

type renameStickerPackRequest struct {
	Name string `json:"name"`
}

// RenameStickerPack updates the pack name.
func (c *Client) RenameStickerPack(ctx context.Context, bind models.Binding, packID uuid.UUID, name string) error {
	m := Method{
		Verb:          http.MethodPut,
		Path:          StickerPackPath,
		PathParams:    map[string]string{"pack_id": packID.String()},
		Body:          renameStickerPackRequest{Name: name},
		ErrorHandlers: stickerErrorHandlers(packID),
	}
	return c.Perform(ctx, bind, m, nil)
}

// DeleteStickerPack removes a sticker pack.
func (c *Client) DeleteStickerPack(ctx context.Context, bind models.Binding, packID uuid.UUID) error {
	m := Method{
		Verb:          http.MethodDelete,
		Path:          StickerPackPath,
		PathParams:    map[string]string{"pack_id": packID.String()},
		ErrorHandlers: stickerErrorHandlers(packID),
	}
	return c.Perform(ctx, bind, m, nil)
}

type addStickerRequest struct {
	Emoji string `json:"emoji"`
	Image string `json:"image"` // RFC 2397 data URL
}

// AddSticker adds one sticker image to a pack.
func (c *Client) AddSticker(ctx context.Context, bind models.Binding, packID uuid.UUID, emoji string, image *models.OutgoingFile) (*Sticker, error) {
	m := Method{
		Verb:          http.MethodPost,
		Path:          StickerAddPath,
		PathParams:    map[string]string{"pack_id": packID.String()},
		Body:          addStickerRequest{Emoji: emoji, Image: image.DataURL()},
		ErrorHandlers: stickerErrorHandlers(packID),
	}
	var sticker Sticker
	if err := c.Perform(ctx, bind, m, &sticker); err != nil {
		return nil, err
	}
	return &sticker, nil
}

// DeleteSticker removes one sticker from a pack.
func (c *Client) DeleteSticker(ctx context.Context, bind models.Binding, packID, stickerID uuid.UUID) error {
	m := Method{
		Verb: http.MethodDelete,
		Path: StickerDeletePath,
		PathParams: map[string]string{
			"pack_id":    packID.String(),
			"sticker_id": stickerID.String(),
		},
		ErrorHandlers: stickerErrorHandlers(packID),
	}
	return c.Perform(ctx, bind, m, nil)
}
