package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/tgvault/internal/batch"
	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

type downloader interface {
	DownloadMedia(ctx context.Context, ref bus.MediaRef, chatID string) (string, error)
}

// Fetcher downloads a message's media through the Telegram channel and
// summarizes the outcome as one status line for the batch reply.
type Fetcher struct {
	channel downloader
}

// NewFetcher creates a Fetcher backed by ch.
func NewFetcher(ch *Channel) *Fetcher {
	return &Fetcher{channel: ch}
}

// Fetch downloads every media item attached to msg. A message without
// media still succeeds with a "no media" status line so it shows up in
// the aggregated reply. The fetch as a whole fails only when the
// message had media and none of it could be saved.
func (f *Fetcher) Fetch(ctx context.Context, msg bus.InboundMessage) (batch.FetchResult, error) {
	if len(msg.Media) == 0 {
		return batch.FetchResult{StatusLine: "No media to download."}, nil
	}

	var saved []string
	var parts []string
	var lastErr error

	for _, ref := range msg.Media {
		path, err := f.channel.DownloadMedia(ctx, ref, msg.ChatID)
		if err != nil {
			lastErr = fmt.Errorf("download %s %s: %w", ref.Kind, ref.FileID, err)
			continue
		}
		saved = append(saved, path)
		parts = append(parts, fmt.Sprintf("%s saved: %s", ref.Kind, filepath.Base(path)))
	}

	if len(saved) == 0 {
		return batch.FetchResult{}, lastErr
	}

	return batch.FetchResult{
		StatusLine: strings.Join(parts, ", "),
		SavedFiles: saved,
	}, nil
}
