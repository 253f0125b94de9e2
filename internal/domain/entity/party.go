package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party types.
const (
	PartyTypeCustomer = "CUSTOMER"
	PartyTypeSupplier = "SUPPLIER"
)

// Party is a counterparty of the shop: a customer (carrying an outstanding
// receivable) or a supplier (carrying a payable). Balance is mutated only by
// the transaction coordinator, inside the same transaction as the document
// that moves it.
type Party struct {
	ID        string
	ShopID    string
	Type      string // PartyTypeCustomer | PartyTypeSupplier
	Name      string
	GSTIN     string
	State     string
	Phone     string
	Balance   decimal.Decimal // customer: outstanding receivable; supplier: payable
	CreatedAt time.Time
	UpdatedAt time.Time
}
