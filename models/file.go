package models

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// allowedExtensions is the closed set of file extensions the messenger
// accepts for bot uploads.
var allowedExtensions = map[string]bool{
	// images
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".tiff": true, ".bmp": true, ".ico": true,
	// office documents
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".odt": true, ".ods": true, ".odp": true,
	// text
	".txt": true, ".csv": true, ".rtf": true, ".md": true,
	".json": true, ".xml": true, ".html": true,
	// pdf
	".pdf": true,
	// archives
	".zip": true, ".rar": true, ".7z": true, ".gz": true, ".tar": true,
	// audio and video
	".mp3": true, ".mp4": true, ".wav": true, ".avi": true, ".mov": true,
	".mkv": true, ".flac": true, ".ogg": true, ".webm": true, ".m4a": true,
}

// fallbackMediaTypes covers extensions the platform mime registry commonly
// misses.
var fallbackMediaTypes = map[string]string{
	".md":   "text/markdown",
	".rar":  "application/vnd.rar",
	".7z":   "application/x-7z-compressed",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
}

// OutgoingFile is a file to be attached to an outbound message. Its media
// type is inferred from the file name; on the wire the content travels as an
// RFC 2397 data URL.
type OutgoingFile struct {
	FileName  string
	MediaType string
	Content   []byte
	Caption   string
}

// NewOutgoingFile reads the full content of r and builds an OutgoingFile.
// The file name must carry one of the accepted extensions.
func NewOutgoingFile(fileName string, r io.Reader) (*OutgoingFile, error) {
	mediaType, err := mediaTypeForName(fileName)
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file content: %w", err)
	}
	return &OutgoingFile{
		FileName:  fileName,
		MediaType: mediaType,
		Content:   content,
	}, nil
}

// WithCaption returns a copy of the file carrying the given caption.
func (f *OutgoingFile) WithCaption(caption string) *OutgoingFile {
	out := *f
	out.Caption = caption
	return &out
}

// DataURL returns the RFC 2397 on-wire form of the file content.
func (f *OutgoingFile) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", f.MediaType, base64.StdEncoding.EncodeToString(f.Content))
}

// IsExtensionAllowed reports whether the file name carries an accepted
// extension.
func IsExtensionAllowed(fileName string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
}

func mediaTypeForName(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file extension %q is not accepted by the messenger", ext)
	}
	if mt, ok := fallbackMediaTypes[ext]; ok {
		return mt, nil
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Strip charset parameters; the messenger wants the bare type.
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return mt, nil
	}
	return "application/octet-stream", nil
}
