// Package processing implements the receipt parsing pipeline: image
// normalization, OCR text extraction, line parsing and categorization.
// The pipeline is stateless and reentrant; every invocation works on
// per-call buffers only, so concurrent uploads never share state.
package processing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Yogesh-Verma634/Budgy/internal/ocr"
)

// RawImage is an uploaded receipt as received from the caller. Filename
// is a diagnostic hint only; the image format is detected from the
// bytes.
type RawImage struct {
	Data     []byte
	Filename string
}

// Item is one purchased product extracted from a receipt.
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category Category        `json:"category"`
}

// Receipt is the structured result of parsing one receipt image.
// TotalAmount is the running sum of the item prices, accumulated during
// parsing rather than re-derived.
type Receipt struct {
	StoreName   string          `json:"store_name"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Category    Category        `json:"category"`
}

// Processor sequences the receipt parsing pipeline.
type Processor struct {
	extractor *Extractor
}

// NewProcessor creates a Processor that extracts text with the given
// OCR engine.
func NewProcessor(engine ocr.Engine) *Processor {
	return &Processor{extractor: NewExtractor(engine)}
}

// Process runs the full pipeline over one uploaded image. On failure it
// returns a *Error identifying which stage failed; no partial result is
// ever returned.
func (p *Processor) Process(ctx context.Context, raw RawImage) (*Receipt, error) {
	img, err := Normalize(raw.Data)
	if err != nil {
		return nil, &Error{Kind: KindImageDecode, Message: "invalid image", Err: err}
	}

	lines, err := p.extractor.Extract(ctx, img)
	if err != nil {
		return nil, &Error{Kind: KindOCREngine, Message: "recognition failed, try a clearer image", Err: err}
	}

	storeName, rawItems, err := ParseLines(lines)
	if err != nil {
		return nil, &Error{Kind: KindEmptyText, Message: "no text could be read from the receipt", Err: err}
	}

	items := make([]Item, 0, len(rawItems))
	total := decimal.Zero
	for _, ri := range rawItems {
		items = append(items, Item{
			Name:     ri.Name,
			Price:    ri.Price,
			Category: CategorizeItem(ri.Name),
		})
		total = total.Add(ri.Price)
	}

	return &Receipt{
		StoreName:   storeName,
		Items:       items,
		TotalAmount: total,
		Category:    AggregateCategory(items),
	}, nil
}
