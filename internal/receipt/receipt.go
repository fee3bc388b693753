package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Yogesh-Verma634/Budgy/internal/processing"
)

// Record is a parsed receipt as persisted and served by the web layer.
// StoreName, Items, TotalAmount and Category come straight from the
// parsing pipeline; the rest is bookkeeping.
type Record struct {
	ID          string              `json:"id"`
	StoreName   string              `json:"store_name"`
	Date        time.Time           `json:"date"`
	Items       []processing.Item   `json:"items"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Category    processing.Category `json:"category"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"content_type"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CategoryTotal is one row of the spending summary shown on the
// dashboard.
type CategoryTotal struct {
	Category processing.Category `json:"category"`
	Total    decimal.Decimal     `json:"total"`
	Receipts int                 `json:"receipts"`
}
