package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
)

type downloadFunc func(ctx context.Context, ref bus.MediaRef, chatID string) (string, error)

func (f downloadFunc) DownloadMedia(ctx context.Context, ref bus.MediaRef, chatID string) (string, error) {
	return f(ctx, ref, chatID)
}

func TestFetchNoMedia(t *testing.T) {
	f := &Fetcher{channel: downloadFunc(func(context.Context, bus.MediaRef, string) (string, error) {
		t.Fatal("downloader called for message without media")
		return "", nil
	})}

	res, err := f.Fetch(context.Background(), bus.InboundMessage{Content: "text only"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.StatusLine != "No media to download." {
		t.Errorf("status = %q", res.StatusLine)
	}
	if len(res.SavedFiles) != 0 {
		t.Errorf("saved files = %v", res.SavedFiles)
	}
}

func TestFetchDownloadsAllItems(t *testing.T) {
	f := &Fetcher{channel: downloadFunc(func(_ context.Context, ref bus.MediaRef, _ string) (string, error) {
		return "/downloads/2026-08-30/" + string(ref.Kind) + "_" + ref.FileID + ".bin", nil
	})}

	msg := bus.InboundMessage{
		ChatID: "1",
		Media: []bus.MediaRef{
			{Kind: bus.MediaPhoto, FileID: "p1"},
			{Kind: bus.MediaVideo, FileID: "v1"},
		},
	}
	res, err := f.Fetch(context.Background(), msg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.SavedFiles) != 2 {
		t.Fatalf("saved %d files, want 2", len(res.SavedFiles))
	}
	if !strings.Contains(res.StatusLine, "photo saved:") || !strings.Contains(res.StatusLine, "video saved:") {
		t.Errorf("status = %q", res.StatusLine)
	}
}

func TestFetchPartialFailureStillSucceeds(t *testing.T) {
	f := &Fetcher{channel: downloadFunc(func(_ context.Context, ref bus.MediaRef, _ string) (string, error) {
		if ref.FileID == "bad" {
			return "", errors.New("gone")
		}
		return "/d/photo_ok.jpg", nil
	})}

	msg := bus.InboundMessage{Media: []bus.MediaRef{
		{Kind: bus.MediaPhoto, FileID: "bad"},
		{Kind: bus.MediaPhoto, FileID: "ok"},
	}}
	res, err := f.Fetch(context.Background(), msg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.SavedFiles) != 1 {
		t.Fatalf("saved %d files, want 1", len(res.SavedFiles))
	}
}

func TestFetchTotalFailure(t *testing.T) {
	sentinel := errors.New("unreachable")
	f := &Fetcher{channel: downloadFunc(func(context.Context, bus.MediaRef, string) (string, error) {
		return "", sentinel
	})}

	msg := bus.InboundMessage{Media: []bus.MediaRef{{Kind: bus.MediaPhoto, FileID: "p"}}}
	if _, err := f.Fetch(context.Background(), msg); !errors.Is(err, sentinel) {
		t.Fatalf("Fetch error = %v, want wrapped sentinel", err)
	}
}
