package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a SKU of the shop. StockQuantity is a derived aggregate: the sum
// of the quantities of the product's active batches. It is always recomputed
// transactionally after a batch mutation, never incremented on its own.
type Product struct {
	ID            string
	ShopID        string
	SKU           string
	Name          string
	HSNCode       string // harmonized code printed on GST invoices
	Unit          string // STRIP, BOTTLE, TABLET, ...
	GSTRate       decimal.Decimal // percent: 0, 5, 12, 18, 28
	SellingPrice  decimal.Decimal // default selling price, batches may override
	StockQuantity int64           // derived: sum of active batch quantities
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
