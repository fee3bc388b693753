package processing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// itemPattern captures an item name followed by a price with exactly
// two fractional digits. The greedy name prefix makes the price the
// rightmost decimal-shaped token on the line, so names with embedded
// numbers ("Size 10 Shoe  12.99") stay intact.
var itemPattern = regexp.MustCompile(`(.+)\s+(\d+\.\d{2})`)

// RawItem is a name/price pair scanned from one receipt line, before
// categorization.
type RawItem struct {
	Name  string
	Price decimal.Decimal
}

// ParseLines treats the first line as the store name and scans the
// remaining lines for item/price pairs. Receipts contain headers,
// footers and other noise, so lines that don't match the item shape are
// skipped silently. Zero lines is an error: no store name can be
// determined.
//
// The first line is taken as the store name without any validation of
// its content. A garbled first line becomes a garbled store name.
func ParseLines(lines []string) (string, []RawItem, error) {
	if len(lines) == 0 {
		return "", nil, fmt.Errorf("extracted text has no lines")
	}

	storeName := strings.TrimSpace(lines[0])

	var items []RawItem
	for _, line := range lines[1:] {
		m := itemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, err := decimal.NewFromString(m[2])
		if err != nil {
			continue
		}
		items = append(items, RawItem{
			Name:  strings.TrimSpace(m[1]),
			Price: price,
		})
	}

	return storeName, items, nil
}
