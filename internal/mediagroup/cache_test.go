package mediagroup

import (
	"testing"
	"time"
)

func TestRecordCompletesAtSize(t *testing.T) {
	var gotID string
	var gotItems []Item
	c := New(WithCompleteFunc(func(groupID string, items []Item) {
		gotID = groupID
		gotItems = items
	}))

	c.Record("album-1", "photo", "f1")
	if gotID != "" {
		t.Fatalf("hook fired after one item")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	c.Record("album-1", "video", "f2")
	if gotID != "album-1" {
		t.Fatalf("hook group = %q, want album-1", gotID)
	}
	if len(gotItems) != 2 {
		t.Fatalf("hook items = %d, want 2", len(gotItems))
	}
	if gotItems[0].FileID != "f1" || gotItems[1].FileID != "f2" {
		t.Fatalf("unexpected items: %+v", gotItems)
	}
	if c.Len() != 0 {
		t.Fatalf("completed group still tracked, Len = %d", c.Len())
	}
}

func TestRecordIndependentGroups(t *testing.T) {
	fired := 0
	c := New(WithCompleteFunc(func(string, []Item) { fired++ }))

	c.Record("a", "photo", "f1")
	c.Record("b", "photo", "f2")
	if fired != 0 {
		t.Fatalf("hook fired across distinct groups")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	c.Record("a", "photo", "f3")
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (group b still open)", c.Len())
	}
}

func TestSweepEvictsOnlyStale(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New(WithStaleAge(90*time.Second), withClock(clock))

	c.Record("old", "photo", "f1")
	now = now.Add(60 * time.Second)
	c.Record("fresh", "photo", "f2")

	// Neither group past the stale age yet.
	now = now.Add(20 * time.Second)
	if n := c.Sweep(); n != 0 {
		t.Fatalf("Sweep evicted %d inside stale window", n)
	}

	// "old" is now 95s old, "fresh" only 35s.
	now = now.Add(15 * time.Second)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("Sweep evicted %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	// A fresh arrival for the swept group starts a new entry.
	fired := false
	c2 := New(withClock(clock), WithCompleteFunc(func(string, []Item) { fired = true }))
	c2.Record("old", "photo", "f1")
	now = now.Add(2 * DefaultStaleAge)
	c2.Sweep()
	c2.Record("old", "photo", "f3")
	if fired {
		t.Fatalf("swept group retained items across eviction")
	}
	if c2.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c2.Len())
	}
}

func TestSweepKeepsCompleteSizeConfigurable(t *testing.T) {
	fired := 0
	c := New(WithCompleteSize(3), WithCompleteFunc(func(_ string, items []Item) {
		fired++
		if len(items) != 3 {
			t.Errorf("items = %d, want 3", len(items))
		}
	}))

	c.Record("g", "photo", "f1")
	c.Record("g", "photo", "f2")
	if fired != 0 {
		t.Fatalf("hook fired before reaching size 3")
	}
	c.Record("g", "photo", "f3")
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}
