package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a tracked lot of a product with its own expiry, cost and remaining
// quantity. FIFO order key = (ExpiryDate asc, CreatedAt asc).
//
// Lifecycle: created on a purchase receipt or initial stock entry; deducted on
// sales and purchase returns; restocked on sales returns and edits. When the
// quantity reaches zero the batch is marked inactive and DepletedAt is stamped;
// a restock reactivates it. A batch is hard-deleted only when no document
// references it.
type Batch struct {
	ID            string
	ShopID        string
	ProductID     string
	BatchCode     string
	ExpiryDate    time.Time
	MfgDate       time.Time
	MRP           decimal.Decimal
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	GSTRate       decimal.Decimal
	Quantity      int64 // nominal, >= 0; edits may drive it negative (surfaced as a warning)
	Active        bool
	DepletedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the batch is past its expiry date at t.
func (b *Batch) Expired(t time.Time) bool {
	return !b.ExpiryDate.IsZero() && b.ExpiryDate.Before(t)
}

// Allocation is one slice of a FIFO allocation plan: how much was taken from
// which batch and at which batch prices.
type Allocation struct {
	Batch         *Batch
	Quantity      int64
	SellingPrice  decimal.Decimal
	PurchasePrice decimal.Decimal
	MRP           decimal.Decimal
	GSTRate       decimal.Decimal
}
