// Package directory resolves authoritative display names for user ids.
// Caller-supplied names are never trusted; every write path re-resolves the
// name through a Directory first.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Directory looks up display names. Implementations must fall back to the raw
// identifier when no record exists and must not fail the request for a missing
// user.
type Directory interface {
	// DisplayName returns the display name for a single user id.
	DisplayName(ctx context.Context, userID string) (string, error)

	// DisplayNames bulk-resolves names for a set of user ids.
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// UnknownName is used when a user record exists but carries no usable name.
const UnknownName = "Unknown"

// Static is an in-memory Directory backed by a fixed id-to-name map.
type Static struct {
	names map[string]string
}

// NewStatic creates a Static directory. The map may be nil.
func NewStatic(names map[string]string) *Static {
	if names == nil {
		names = make(map[string]string)
	}

	return &Static{names: names}
}

// NewStaticFromFile loads a Static directory from a JSON file mapping user ids
// to display names. A missing path yields an empty directory.
func NewStaticFromFile(path string) (*Static, error) {
	if path == "" {
		return NewStatic(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStatic(nil), nil
		}

		return nil, fmt.Errorf("failed to read directory file %s: %w", path, err)
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse directory file %s: %w", path, err)
	}

	return NewStatic(names), nil
}

func (s *Static) DisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := s.names[userID]; ok && name != "" {
		return name, nil
	}

	return userID, nil
}

func (s *Static) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	resolved := make(map[string]string, len(userIDs))

	for _, id := range userIDs {
		name, _ := s.DisplayName(ctx, id)
		resolved[id] = name
	}

	return resolved, nil
}
