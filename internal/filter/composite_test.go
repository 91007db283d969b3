package filter

import (
	"testing"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
)

func TestParseCompositeValues(t *testing.T) {
	keys, hasInstanceIDs := ParseCompositeValues([]string{"82:server-1", "5"})

	if !hasInstanceIDs {
		t.Error("expected hasInstanceIDs to be true")
	}
	want := []domain.EntityKey{
		{ID: "82", InstanceID: "server-1"},
		{ID: "5"},
	}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: got %+v, want %+v", i, keys[i], want[i])
		}
	}
}

func TestParseCompositeValues_BareOnly(t *testing.T) {
	keys, hasInstanceIDs := ParseCompositeValues([]string{"1", "2", "3"})

	if hasInstanceIDs {
		t.Error("expected hasInstanceIDs to be false for bare values")
	}
	for _, k := range keys {
		if !k.Wildcard() {
			t.Errorf("bare value %q should parse to a wildcard instance", k.ID)
		}
	}
}

func TestParseCompositeValues_SplitsOnFirstColonOnly(t *testing.T) {
	keys, hasInstanceIDs := ParseCompositeValues([]string{"7:urn:node:a1b2"})

	if !hasInstanceIDs {
		t.Error("expected hasInstanceIDs to be true")
	}
	if keys[0].ID != "7" {
		t.Errorf("ID: got %q, want %q", keys[0].ID, "7")
	}
	if keys[0].InstanceID != "urn:node:a1b2" {
		t.Errorf("InstanceID: got %q, want %q (colons must be preserved)", keys[0].InstanceID, "urn:node:a1b2")
	}
}

func TestParseCompositeValues_TrailingColonIsBare(t *testing.T) {
	keys, hasInstanceIDs := ParseCompositeValues([]string{"9:"})

	if hasInstanceIDs {
		t.Error("a trailing colon carries no instance and must not flag the set")
	}
	if keys[0].ID != "9" || !keys[0].Wildcard() {
		t.Errorf("got %+v, want bare key with ID 9", keys[0])
	}
}

func TestParseCompositeValues_Empty(t *testing.T) {
	keys, hasInstanceIDs := ParseCompositeValues(nil)
	if len(keys) != 0 || hasInstanceIDs {
		t.Errorf("empty input: got %v, %v", keys, hasInstanceIDs)
	}
}
