package postgres

import (
	"strings"
	"testing"
)

// TestMigrationsAreOrderedAndUnique guards against a future migration being
// appended with a duplicate or out-of-sequence version number, which would
// make the "apply anything newer than current" loop in migrate skip or
// reorder work silently.
func TestMigrationsAreOrderedAndUnique(t *testing.T) {
	seen := map[int]bool{}
	prev := 0
	for _, m := range migrations {
		if seen[m.version] {
			t.Errorf("duplicate migration version %d", m.version)
		}
		seen[m.version] = true
		if m.version <= prev {
			t.Errorf("migration version %d is not strictly increasing after %d", m.version, prev)
		}
		prev = m.version
		if strings.TrimSpace(m.description) == "" {
			t.Errorf("migration %d has an empty description", m.version)
		}
		if strings.TrimSpace(m.up) == "" {
			t.Errorf("migration %d has an empty up script", m.version)
		}
	}
}

func TestFirstMigrationCreatesDecodedEventsTable(t *testing.T) {
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
	first := migrations[0]
	if first.version != 1 {
		t.Errorf("expected the first migration to be version 1, got %d", first.version)
	}
	for _, want := range []string{"decoded_events", "idx_decoded_events_signature", "idx_decoded_events_platform", "idx_decoded_events_slot"} {
		if !strings.Contains(first.up, want) {
			t.Errorf("expected migration 1's script to mention %q", want)
		}
	}
}
