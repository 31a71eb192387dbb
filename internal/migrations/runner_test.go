package migrations

import (
	"strings"
	"testing"
)

func TestLoadEntriesOrdered(t *testing.T) {
	entries, err := loadEntries()
	if err != nil {
		t.Fatalf("loadEntries: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("got %d migrations; want at least 2", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].version >= entries[i].version {
			t.Errorf("migrations out of order: %s before %s", entries[i-1].version, entries[i].version)
		}
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	entries, err := loadEntries()
	if err != nil {
		t.Fatalf("loadEntries: %v", err)
	}
	var all strings.Builder
	for _, e := range entries {
		if !strings.HasSuffix(e.version, ".sql") || strings.TrimSpace(e.sql) == "" {
			t.Errorf("bad migration %q", e.version)
		}
		all.WriteString(e.sql)
	}
	for _, table := range []string{"pincode_distances_exact", "distance_pricing_rules"} {
		if !strings.Contains(all.String(), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("no migration creates %s", table)
		}
	}
}
