package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one purchasable entry in a cart: access to a single video CV.
// ID is assigned by the marketplace once the item has been synchronized;
// before that it carries a client-generated transient id.
type LineItem struct {
	ID            string          `json:"id"`
	ProductRef    string          `json:"product_ref"`
	Title         string          `json:"title"`
	ThumbnailURL  string          `json:"thumbnail_url"`
	UploaderLabel string          `json:"uploader_label"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	AddedAt       time.Time       `json:"added_at"`
}

// Subtotal is unit price times quantity. Display metadata is never
// authoritative for pricing; the price is reconciled at checkout.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the line items for one session, in insertion order.
type Cart struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
