package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// maxOCRWidth bounds normalized images so high-resolution phone photos
// don't overwhelm the OCR engine.
const maxOCRWidth = 2048

// Normalize decodes raw receipt bytes and coerces the result to
// three-channel color. The format is detected from the content, never
// from a filename: PDFs are rendered at the first page, HEIC/HEIF
// photos use a pure Go decoder (the standard image package doesn't
// support them), everything else goes through image.Decode. Grayscale
// and palette images convert losslessly; an alpha channel is dropped by
// compositing over white.
func Normalize(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	var img image.Image
	var err error

	switch {
	case isPDF(data):
		img, err = renderPDFPage(data)
	case isHEIC(data):
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding HEIC image: %w", err)
		}
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				err = fmt.Errorf("unsupported image format (supported: PNG, JPEG, GIF, HEIC, PDF): %w", err)
			} else {
				err = fmt.Errorf("decoding image: %w", err)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() > maxOCRWidth {
		img = imaging.Resize(img, maxOCRWidth, 0, imaging.Lanczos)
	}

	return toRGB(img), nil
}

// toRGB composites the image over a white background into an RGB-backed
// buffer, dropping any alpha channel.
func toRGB(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgb, rgb.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), img, bounds.Min, draw.Over)
	return rgb
}

// renderPDFPage rasterizes the first page of a PDF. Receipts are almost
// always single page.
func renderPDFPage(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEIC sniffs the ftyp box brands used by HEIC/HEIF containers.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
