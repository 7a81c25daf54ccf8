// Package retention deletes downloaded media past its configured age.
// The sweep runs on a cron schedule so operators can pin it to quiet
// hours instead of having it compete with live downloads.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adhocore/gronx"
)

// Sweeper walks the downloads directory on schedule and removes files
// older than the retention window.
type Sweeper struct {
	dir      string
	cronExpr string
	maxAge   time.Duration
	cron     *gronx.Gronx
	now      func() time.Time
}

// New creates a Sweeper. Returns an error when the cron expression is
// invalid; an empty expression is rejected here, callers should skip
// construction entirely when retention is disabled.
func New(dir, cronExpr string, retentionDays int) (*Sweeper, error) {
	if cronExpr == "" {
		return nil, fmt.Errorf("empty cron expression")
	}
	if !gronx.New().IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid cron expression %q", cronExpr)
	}
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention_days must be positive, got %d", retentionDays)
	}
	return &Sweeper{
		dir:      dir,
		cronExpr: cronExpr,
		maxAge:   time.Duration(retentionDays) * 24 * time.Hour,
		cron:     gronx.New(),
		now:      time.Now,
	}, nil
}

// Run checks the schedule once a minute and sweeps when due.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("retention sweeper started", "schedule", s.cronExpr, "max_age", s.maxAge)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case tick := <-ticker.C:
			due, err := s.cron.IsDue(s.cronExpr, tick)
			if err != nil {
				slog.Error("cron schedule check failed", "error", err)
				continue
			}
			if !due {
				continue
			}
			removed, err := s.Sweep()
			if err != nil {
				slog.Error("retention sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("retention sweep removed old media", "files", removed)
			}
		}
	}
}

// Sweep removes files older than the retention window and prunes
// directories left empty, returning the number of files removed.
func (s *Sweeper) Sweep() (int, error) {
	cutoff := s.now().Add(-s.maxAge)
	removed := 0

	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// A vanished file mid-walk is not a sweep failure.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if rmErr := os.Remove(path); rmErr != nil {
				slog.Warn("failed to remove expired file", "path", path, "error", rmErr)
				return nil
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("walk downloads dir: %w", err)
	}

	s.pruneEmptyDirs()
	return removed, nil
}

// pruneEmptyDirs removes dated subdirectories that the sweep emptied.
func (s *Sweeper) pruneEmptyDirs() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(s.dir, e.Name())
		children, err := os.ReadDir(sub)
		if err != nil || len(children) > 0 {
			continue
		}
		if err := os.Remove(sub); err != nil {
			slog.Debug("failed to prune empty directory", "path", sub, "error", err)
		}
	}
}
