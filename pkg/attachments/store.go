// Package attachments persists uploaded files attached to ticket actions.
package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// File is one attachment payload from an action request. Either Data or
// Content carries the base64-encoded body; Data wins if both are set.
type File struct {
	Name    string `json:"name"    validate:"required"`
	Data    string `json:"data,omitempty"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Body returns the encoded file body.
func (f *File) Body() string {
	if f.Data != "" {
		return f.Data
	}

	return f.Content
}

// Store persists one attachment and returns its absolute path on disk.
type Store interface {
	Save(ctx context.Context, ticketNumber string, file File) (string, error)
}

// DiskStore writes attachments under root/uploads/<ticketNumber>/.
type DiskStore struct {
	root   string
	logger *slog.Logger
}

// NewDiskStore creates a disk-backed attachment store.
func NewDiskStore(root string, logger *slog.Logger) *DiskStore {
	return &DiskStore{root: root, logger: logger}
}

func (s *DiskStore) Save(_ context.Context, ticketNumber string, file File) (string, error) {
	if file.Name == "" {
		return "", fmt.Errorf("attachment has no name")
	}

	body, err := base64.StdEncoding.DecodeString(file.Body())
	if err != nil {
		return "", fmt.Errorf("failed to decode attachment %s: %w", file.Name, err)
	}

	dir := filepath.Join(s.root, "uploads", ticketNumber)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, body, 0600); err != nil {
		return "", fmt.Errorf("failed to write attachment %s: %w", file.Name, err)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}

	return absolute, nil
}

// RelativePath rewrites an absolute attachment path to the storage-relative
// form recorded in history entries: the substring from the "uploads" segment
// onward, with backslashes normalized to forward slashes. Paths without that
// segment pass through unchanged with a warning.
func RelativePath(absolutePath string, logger *slog.Logger) string {
	normalized := strings.ReplaceAll(absolutePath, "\\", "/")

	index := strings.Index(normalized, "uploads")
	if index < 0 {
		logger.Warn("Attachment path has no uploads segment", "path", absolutePath)

		return absolutePath
	}

	return normalized[index:]
}

// SaveAll persists each attachment, returning the normalized relative paths.
// A failure to save one attachment is logged and that attachment skipped; it
// never aborts the action.
func SaveAll(ctx context.Context, store Store, ticketNumber string, files []File, logger *slog.Logger) []string {
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, 0, len(files))

	for _, file := range files {
		absolute, err := store.Save(ctx, ticketNumber, file)
		if err != nil {
			logger.WarnContext(ctx, "Failed to save attachment",
				"ticket_number", ticketNumber, "name", file.Name, "error", err)

			continue
		}

		paths = append(paths, RelativePath(absolute, logger))
	}

	return paths
}
