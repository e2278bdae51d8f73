package ids

import (
	"strings"
	"testing"
)

func TestIdentifierShapes(t *testing.T) {
	g := New()

	tests := []struct {
		name   string
		gen    func() string
		prefix string
		length int
	}{
		{"record slug", g.RecordSlug, "r", 17},
		{"field id", g.FieldID, "f", 17},
		{"option id", g.OptionID, "o", 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("id %q lacks prefix %q", id, tt.prefix)
			}
			if len(id) != tt.length {
				t.Errorf("id %q has length %d, want %d", id, len(id), tt.length)
			}
			for _, r := range id[1:] {
				if !strings.ContainsRune("0123456789abcdef", r) {
					t.Errorf("id %q contains non-hex rune %q", id, r)
				}
			}
		})
	}
}

func TestIdentifiersAreUnique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		for _, id := range []string{g.SheetID(), g.RecordID(), g.RecordSlug(), g.FieldID()} {
			if seen[id] {
				t.Fatalf("duplicate identifier %q", id)
			}
			seen[id] = true
		}
	}
}

func TestRecordIDAndSlugAreDistinctNamespaces(t *testing.T) {
	g := New()
	id := g.RecordID()
	slug := g.RecordSlug()
	if strings.Contains(id, "-") == false {
		t.Errorf("record id %q should be a canonical uuid", id)
	}
	if strings.Contains(slug, "-") {
		t.Errorf("record slug %q should not contain dashes", slug)
	}
}
