// Package archive persists a durable record of every ingested message
// alongside the files saved for it.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/nextlevelbuilder/tgvault/internal/config"
)

// Record is one archived message.
type Record struct {
	ID         string
	Channel    string
	ChatID     string
	SenderID   string
	MessageID  string
	Content    string
	GroupID    string
	Payload    []byte
	SavedFiles []string
	CreatedAt  time.Time
}

// Store is the persistence backend for archive records.
type Store interface {
	SaveMessage(ctx context.Context, rec Record) error
	// RecentMessages returns up to limit records for a chat, newest first.
	RecentMessages(ctx context.Context, chatID string, limit int) ([]Record, error)
	Close() error
}

// NewStore opens the backend selected by cfg.Database.Driver and runs
// any pending schema migrations before returning it.
func NewStore(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		return NewSQLiteStore(config.ExpandHome(cfg.SQLitePath))
	case config.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver selected but TGVAULT_POSTGRES_DSN is not set")
		}
		return NewPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
