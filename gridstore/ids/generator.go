// Package ids generates collision-resistant identifiers for client-created
// sheets, fields and records. Identity is minted before any remote
// round-trip so optimistic inserts are addressable from the moment they
// appear in the store.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Generator mints UUID-backed identifiers
type Generator struct{}

// New creates a Generator
func New() *Generator {
	return &Generator{}
}

// SheetID returns a fresh sheet identifier
func (*Generator) SheetID() string {
	return uuid.New().String()
}

// RecordID returns a fresh internal record identifier
func (*Generator) RecordID() string {
	return uuid.New().String()
}

// RecordSlug returns a fresh external record identifier. Slugs are short,
// URL-safe and distinct from the record id.
func (*Generator) RecordSlug() string {
	return "r" + compact(uuid.New())[:16]
}

// FieldID returns a fresh field identifier, stable for the field's lifetime
func (*Generator) FieldID() string {
	return "f" + compact(uuid.New())[:16]
}

// OptionID returns a fresh selection-option identifier
func (*Generator) OptionID() string {
	return "o" + compact(uuid.New())[:16]
}

func compact(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}
