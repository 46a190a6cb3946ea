package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Thumbnail encodes img as JPEG, scaled down to fit within maxSize.
// Smaller images are re-encoded without scaling.
func Thumbnail(img image.Image, maxSize int) ([]byte, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := img
	if width > maxSize || height > maxSize {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxSize
			newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
		} else {
			newHeight = maxSize
			newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
