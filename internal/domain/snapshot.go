package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseItem struct {
	LineItemID string          `json:"line_item_id"`
	ProductRef string          `json:"product_ref"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PurchaseSnapshot is the cart state frozen at provider handoff. The set of
// purchased items and the total are taken from this snapshot through
// confirmation and cleanup; mutations to the live cart while the provider
// round-trip is in flight do not change what gets charged or recorded.
type PurchaseSnapshot struct {
	Items       []PurchaseItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CapturedAt  time.Time       `json:"captured_at"`
}

// SnapshotSelection captures the selected items into a PurchaseSnapshot.
func SnapshotSelection(items []LineItem, sel *Selection, currency string) *PurchaseSnapshot {
	snapshot := &PurchaseSnapshot{
		Items:      make([]PurchaseItem, 0, sel.Len()),
		Currency:   currency,
		CapturedAt: time.Now(),
	}

	total := decimal.Zero
	for _, item := range items {
		if !sel.Has(item.ID) {
			continue
		}
		subtotal := item.Subtotal()
		snapshot.Items = append(snapshot.Items, PurchaseItem{
			LineItemID: item.ID,
			ProductRef: item.ProductRef,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Subtotal:   subtotal,
		})
		total = total.Add(subtotal)
	}

	snapshot.TotalAmount = total
	return snapshot
}
