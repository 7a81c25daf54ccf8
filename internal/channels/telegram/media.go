package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/tgvault/internal/bus"
	"github.com/nextlevelbuilder/tgvault/internal/config"
)

const (
	// defaultMediaMaxBytes is the default max download size (20MB, Telegram Bot API limit).
	defaultMediaMaxBytes int64 = 20 * 1024 * 1024

	// downloadMaxRetries is the number of download retry attempts.
	downloadMaxRetries = 3
)

// DownloadMedia fetches one media item by file_id and stores it under
// the downloads directory in a per-day subdirectory. Returns the local
// path of the saved file.
func (c *Channel) DownloadMedia(ctx context.Context, ref bus.MediaRef, chatID string) (string, error) {
	maxBytes := c.config.MediaMaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMediaMaxBytes
	}

	var file *telego.File
	var err error

	// Retry the file-info lookup with linear backoff; the Bot API
	// returns transient errors under load.
	for attempt := 1; attempt <= downloadMaxRetries; attempt++ {
		file, err = c.bot.GetFile(ctx, &telego.GetFileParams{FileID: ref.FileID})
		if err == nil {
			break
		}
		if attempt < downloadMaxRetries {
			slog.Debug("retrying file info lookup", "file_id", ref.FileID, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("get file info after %d attempts: %w", downloadMaxRetries, err)
	}

	if file.FilePath == "" {
		return "", fmt.Errorf("empty file path for file_id %s", ref.FileID)
	}
	if int64(file.FileSize) > maxBytes {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", file.FileSize, maxBytes)
	}

	destDir := filepath.Join(config.ExpandHome(c.downloads.Dir), time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads directory: %w", err)
	}
	destPath := filepath.Join(destDir, mediaFileName(ref, file.FilePath))

	downloadURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", c.config.Token, file.FilePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(out, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := out.Close()
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("save file: %w", err)
	}
	if closeErr != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("close file: %w", closeErr)
	}
	if written > maxBytes {
		os.Remove(destPath)
		return "", fmt.Errorf("file exceeds max size during download: %d bytes", written)
	}

	// Photos come back as plain JPEGs; normalize oversized ones so the
	// archive does not fill with multi-megapixel originals.
	if ref.Kind == bus.MediaPhoto {
		if err := normalizePhoto(destPath, c.downloads.MaxImageEdge); err != nil {
			slog.Warn("photo normalization failed, keeping original", "path", destPath, "error", err)
		}
	}

	slog.Debug("media saved", "kind", ref.Kind, "path", destPath, "bytes", written)
	return destPath, nil
}

// mediaFileName builds a stable on-disk name for a media item. Photos
// get a deterministic name keyed by file ID; everything else keeps its
// original filename when the platform provides one.
func mediaFileName(ref bus.MediaRef, remotePath string) string {
	if ref.Kind == bus.MediaPhoto {
		return fmt.Sprintf("photo_%s.jpg", ref.FileID)
	}
	if ref.FileName != "" {
		return fmt.Sprintf("%s_%s", ref.FileID, filepath.Base(ref.FileName))
	}
	ext := filepath.Ext(remotePath)
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s_%s%s", ref.Kind, ref.FileID, ext)
}
