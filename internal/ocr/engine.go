// Package ocr provides the text recognition engines the receipt
// pipeline runs on. An engine is an opaque oracle: it takes a decoded
// image and returns whatever text it can read, with no structure beyond
// line breaks.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// Engine recognizes text in an image.
type Engine interface {
	// Recognize returns the raw multi-line text read from the image.
	// Empty output is a valid result; an error means the engine itself
	// faulted.
	Recognize(ctx context.Context, img image.Image) (string, error)

	// Close releases engine resources.
	Close() error
}

// encodePNG serializes an image for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
