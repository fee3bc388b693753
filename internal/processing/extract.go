package processing

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/Yogesh-Verma634/Budgy/internal/ocr"
)

// Extractor runs an OCR engine over a normalized image and splits the
// recognized text into lines. It performs no semantic validation: empty
// or garbled text passes through untouched, only an engine fault is an
// error.
type Extractor struct {
	engine ocr.Engine
}

// NewExtractor creates an Extractor on top of the given engine.
func NewExtractor(engine ocr.Engine) *Extractor {
	return &Extractor{engine: engine}
}

// Extract returns the engine's raw text split at newline boundaries.
// Empty lines are preserved in the sequence; engine output with no text
// at all yields zero lines.
func (e *Extractor) Extract(ctx context.Context, img image.Image) ([]string, error) {
	text, err := e.engine.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
