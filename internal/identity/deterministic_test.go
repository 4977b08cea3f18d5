package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestPageUUIDIsStable(t *testing.T) {
	first := PageUUID("1/4/2/index.md")
	if first == uuid.Nil {
		t.Fatal("expected a non-nil id")
	}
	if again := PageUUID("1/4/2/index.md"); again != first {
		t.Fatalf("expected the same id, got %s and %s", first, again)
	}
	if cleaned := PageUUID(" ./1/4/2/index.md "); cleaned != first {
		t.Fatalf("expected the cleaned path to map to the same id, got %s", cleaned)
	}
	if other := PageUUID("1/4/3/index.md"); other == first {
		t.Fatal("expected different paths to get different ids")
	}
}

func TestEmptyKeysMapToNil(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil id for blank key")
	}
	if PageUUID("") != uuid.Nil {
		t.Fatal("expected nil id for blank path")
	}
}
