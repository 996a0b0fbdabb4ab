package activity

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "activity.db"), "activity")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		entry := Entry{
			UserID:    "alice",
			Entity:    "task",
			Action:    "create",
			Detail:    "task",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Append(entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(entries))
	}
	if !entries[0].Timestamp.After(entries[1].Timestamp) {
		t.Errorf("entries not newest-first: %v then %v", entries[0].Timestamp, entries[1].Timestamp)
	}
	if entries[0].ID == "" {
		t.Error("Append must assign an entry id")
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	old := Entry{UserID: "alice", Entity: "task", Action: "delete", Timestamp: base.Add(-48 * time.Hour)}
	fresh := Entry{UserID: "alice", Entity: "task", Action: "create", Timestamp: base}
	for _, e := range []Entry{old, fresh} {
		if err := store.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	dropped, err := store.Prune(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 1 {
		t.Errorf("size = %d, want 1", size)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "create" {
		t.Errorf("surviving entries = %+v, want the fresh one", entries)
	}
}

func TestClosedStore(t *testing.T) {
	store := openTestStore(t)
	store.Close()
	store.db = nil

	if err := store.Append(Entry{UserID: "u"}); err == nil {
		t.Error("Append on a closed store must fail")
	}
	if _, err := store.Recent(1); err == nil {
		t.Error("Recent on a closed store must fail")
	}
}
