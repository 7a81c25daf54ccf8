package telegram

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// defaultMaxImageEdge caps the long edge of stored photos.
const defaultMaxImageEdge = 4096

// normalizePhoto downscales the image at path when its long edge exceeds
// maxEdge, rewriting the file in place as JPEG. Images that already fit
// are left untouched to avoid a lossy re-encode.
func normalizePhoto(path string, maxEdge int) error {
	if maxEdge <= 0 {
		maxEdge = defaultMaxImageEdge
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxEdge && bounds.Dy() <= maxEdge {
		return nil
	}
	img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)

	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	return nil
}
