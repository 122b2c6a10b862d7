package store

import (
	"encoding/base64"
	"fmt"
)

// Page is one window of an ordered listing.
type Page[T any] struct {
	Items      []T
	NextCursor string // empty on the last page
	HasMore    bool
}

// EncodeCursor turns an index value into an opaque URL-safe cursor.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor reverses EncodeCursor. An empty cursor decodes to "".
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}
	return string(decoded), nil
}

// clampLimit returns limit, or def when limit is not positive, capped at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
