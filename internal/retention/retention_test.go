package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("/tmp", "", 7); err == nil {
		t.Error("empty cron expression accepted")
	}
	if _, err := New("/tmp", "not a cron", 7); err == nil {
		t.Error("invalid cron expression accepted")
	}
	if _, err := New("/tmp", "0 3 * * *", 0); err == nil {
		t.Error("zero retention days accepted")
	}
	s, err := New("/tmp", "0 3 * * *", 7)
	if err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if s.cron == nil {
		t.Error("cron matcher not initialised")
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	dayDir := filepath.Join(dir, "2026-08-01")
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		t.Fatal(err)
	}

	oldFile := filepath.Join(dayDir, "photo_old.jpg")
	newFile := filepath.Join(dayDir, "photo_new.jpg")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	oldTime := time.Now().Add(-10 * 24 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir, "0 3 * * *", 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	removed, err := s.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d files, want 1", removed)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("expired file still present")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}

func TestSweepPrunesEmptyDayDirs(t *testing.T) {
	dir := t.TempDir()
	dayDir := filepath.Join(dir, "2026-07-01")
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	f := filepath.Join(dayDir, "voice_x.oga")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	oldTime := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(f, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir, "0 3 * * *", 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Sweep(); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if _, err := os.Stat(dayDir); !os.IsNotExist(err) {
		t.Error("emptied day directory not pruned")
	}
}
