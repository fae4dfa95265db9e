// Package persistence contains helpers shared by recommendation store implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dsharma2002/FitGenie-AI/internal/domain"
)

// DefaultPageSize and MaxPageSize bound user listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token. An empty token means the first page.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	// Recommendation ids are UUIDs in every store.
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &domain.Cursor{CreatedAt: ts, ID: id.String()}, nil
}

// ClampLimit applies the default page size and the upper bound.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// Before reports whether rec sorts after the cursor position in newest-first order.
func Before(rec domain.Recommendation, c *domain.Cursor) bool {
	if c == nil {
		return true
	}
	if rec.CreatedAt.Equal(c.CreatedAt) {
		return rec.ID < c.ID
	}
	return rec.CreatedAt.Before(c.CreatedAt)
}

// NextCursor returns the cursor for the page after page, or nil when page is short.
func NextCursor(page []domain.Recommendation, limit int) *domain.Cursor {
	if limit <= 0 || len(page) < limit {
		return nil
	}
	last := page[len(page)-1]
	return &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
}
