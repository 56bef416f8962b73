package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// File route templates.
const (
	FileUploadPath   = "/api/v3/botx/files/upload"
	FileDownloadPath = "/api/v3/botx/files/download"
)

func fileErrorHandlers(fileID uuid.UUID) map[int][]ErrorHandler {
	return map[int][]ErrorHandler{
		http.StatusNoContent: {func(env *ErrorEnvelope, rc RequestContext) error {
			return &FileDeletedError{APIError{rc}}
		}},
		http.StatusNotFound: {
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "file_metadata_not_found" {
					return nil
				}
				return &FileMetadataNotFoundError{APIError: APIError{rc}, FileID: fileID}
			},
			func(env *ErrorEnvelope, rc RequestContext) error {
				if env.Reason != "chat_not_found" {
					return nil
				}
				return &ChatNotFoundError{
					APIError: APIError{rc},
					ChatID:   errorDataUUID(env, "group_chat_id"),
				}
			},
		},
		http.StatusBadRequest: {func(env *ErrorEnvelope, rc RequestContext) error {
			if env.Reason != "file_without_preview" {
				return nil
			}
			return &FileWithoutPreviewError{APIError{rc}}
		}},
	}
}

// UploadFile uploads a file into a chat's file storage and returns its
// server-side descriptor.
func (c *Client) UploadFile(ctx context.Context, bind models.Binding, chatID uuid.UUID, file *models.OutgoingFile) (*models.AsyncFile, error) {
	m := Method{
		Verb: http.MethodPost,
		Path: FileUploadPath,
		File: file,
		FileMeta: map[string]string{
			"group_chat_id": chatID.String(),
		},
		ErrorHandlers: fileErrorHandlers(uuid.Nil),
	}
	if file.Caption != "" {
		m.FileMeta["meta"] = `{"caption":"` + file.Caption + `"}`
	}

	var result struct {
		Type     models.AttachmentKind `json:"type"`
		FileID   uuid.UUID             `json:"file_id"`
		FileName string                `json:"file_name"`
		FileSize int64                 `json:"file_size"`
		MimeType string                `json:"file_mime_type"`
	}
	if err := c.Perform(ctx, bind, m, &result); err != nil {
		return nil, err
	}
	return &models.AsyncFile{
		Kind:     result.Type,
		FileID:   result.FileID,
		FileName: result.FileName,
		FileSize: result.FileSize,
		MimeType: result.MimeType,
	}, nil
}

// DownloadFile fetches the raw content of a stored file.
func (c *Client) DownloadFile(ctx context.Context, bind models.Binding, chatID, fileID uuid.UUID) ([]byte, error) {
	m := Method{
		Verb: http.MethodGet,
		Path: FileDownloadPath,
		Query: url.Values{
			"group_chat_id": {chatID.String()},
			"file_id":       {fileID.String()},
		},
		ErrorHandlers: fileErrorHandlers(fileID),
	}
	return c.PerformRaw(ctx, bind, m)
}
