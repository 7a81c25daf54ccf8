package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default single-file archive backend. It uses the
// pure-Go sqlite driver, so the binary stays cgo-free.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer; sqlite locks the whole file anyway.
	db.SetMaxOpenConns(1)

	if err := Migrate(db, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveMessage(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.Must(uuid.NewV7()).String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	files, err := json.Marshal(rec.SavedFiles)
	if err != nil {
		return fmt.Errorf("encode saved files: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, channel, chat_id, sender_id, message_id, content, group_id, payload, saved_files, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Channel, rec.ChatID, rec.SenderID, rec.MessageID,
		rec.Content, rec.GroupID, nullable(rec.Payload), string(files), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentMessages(ctx context.Context, chatID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, chat_id, sender_id, message_id, content, group_id, payload, saved_files, created_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at DESC LIMIT ?`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullable maps an empty payload to SQL NULL instead of an empty blob.
func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var payload sql.NullString
		var files string
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.ChatID, &rec.SenderID, &rec.MessageID,
			&rec.Content, &rec.GroupID, &payload, &files, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if payload.Valid {
			rec.Payload = []byte(payload.String)
		}
		if err := json.Unmarshal([]byte(files), &rec.SavedFiles); err != nil {
			return nil, fmt.Errorf("decode saved files: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
