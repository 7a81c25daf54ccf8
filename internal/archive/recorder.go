package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

// Recorder adapts a Store to the batch consumer's archiver hook,
// mapping an inbound message plus its saved files onto one Record.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Archive(ctx context.Context, msg bus.InboundMessage, savedFiles []string) error {
	rec := Record{
		Channel:    msg.Channel,
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		MessageID:  msg.MessageID,
		Content:    msg.Content,
		GroupID:    msg.GroupID,
		Payload:    msg.Payload,
		SavedFiles: savedFiles,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.SaveMessage(ctx, rec); err != nil {
		return fmt.Errorf("archive message %s/%s: %w", msg.ChatID, msg.MessageID, err)
	}
	return nil
}
