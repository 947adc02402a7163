package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // posters are not always JPEG

	"golang.org/x/image/draw"
)

// ThumbnailSize is the bounding box posters are scaled into before being
// attached to a card. Trello renders its own previews, so anything larger
// only wastes upload time.
const ThumbnailSize = 500

const jpegQuality = 85

// Thumbnail downscales image data to fit within a ThumbnailSize square,
// preserving aspect ratio, and re-encodes it as JPEG. Images already inside
// the box are re-encoded without scaling.
func Thumbnail(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode poster: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("poster has no pixels")
	}

	if width > ThumbnailSize || height > ThumbnailSize {
		scale := float64(ThumbnailSize) / float64(width)
		if s := float64(ThumbnailSize) / float64(height); s < scale {
			scale = s
		}
		scaledWidth := int(float64(width) * scale)
		scaledHeight := int(float64(height) * scale)
		if scaledWidth < 1 {
			scaledWidth = 1
		}
		if scaledHeight < 1 {
			scaledHeight = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}
	return out.Bytes(), nil
}
