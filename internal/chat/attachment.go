package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finassist/fin/internal/api"
)

// DefaultFilename is used when an attachment names no usable file.
const DefaultFilename = "attachment.bin"

// ErrInvalidAttachment is returned for attachments without data.
var ErrInvalidAttachment = errors.New("invalid attachment data")

// DecodeAttachment returns the decoded bytes of a base64 attachment.
func DecodeAttachment(a *api.Attachment) ([]byte, error) {
	if a == nil || a.Data == "" {
		return nil, ErrInvalidAttachment
	}
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}
	return data, nil
}

// AttachmentFilename returns a file name safe to create inside a directory.
func AttachmentFilename(a *api.Attachment) string {
	if a == nil {
		return DefaultFilename
	}
	name := filepath.Base(filepath.Clean("/" + a.Filename))
	if name == "/" || name == "." || name == "" {
		return DefaultFilename
	}
	return name
}

// SaveAttachment writes the decoded attachment into dir and returns its
// path. The file is replaced atomically, so saving the same attachment
// again leaves exactly one complete copy.
func SaveAttachment(dir string, a *api.Attachment) (string, error) {
	data, err := DecodeAttachment(a)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(dir, AttachmentFilename(a))
	tmp, err := os.CreateTemp(dir, ".fin-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	return path, nil
}
