package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document types.
const (
	DocTypeInvoice        = "INVOICE"
	DocTypePurchase       = "PURCHASE"
	DocTypeSalesReturn    = "SALES_RETURN"
	DocTypePurchaseReturn = "PURCHASE_RETURN"
)

// Payment modes. CREDIT leaves the amount on the counterparty balance.
const (
	PaymentModeCash   = "CASH"
	PaymentModeBank   = "BANK"
	PaymentModeCredit = "CREDIT"
)

// Payment statuses.
const (
	PaymentStatusPaid   = "PAID"
	PaymentStatusUnpaid = "UNPAID"
)

// Return reasons. DAMAGED and EXPIRED stock is not restocked.
const (
	ReturnReasonDamaged   = "DAMAGED"
	ReturnReasonExpired   = "EXPIRED"
	ReturnReasonUnwanted  = "UNWANTED"
	ReturnReasonWrongItem = "WRONG_ITEM"
)

// Document is an invoice, purchase, sales return or purchase return. It owns
// its item list and references batches and ledger entries by id (shared, not
// owned).
type Document struct {
	ID             string
	ShopID         string
	Type           string
	Number         string
	PartyID        string
	Date           time.Time
	Items          []DocumentItem
	Subtotal       decimal.Decimal // sum of taxable values
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	OtherCharges   decimal.Decimal
	Discount       decimal.Decimal
	RoundOff       decimal.Decimal
	GrandTotal     decimal.Decimal
	PaymentMode    string
	PaymentStatus  string
	TaxType        string // gst.TaxTypeIntra | gst.TaxTypeInter
	LedgerEntryIDs []string

	// Return bookkeeping on the original document.
	ReturnedAmount decimal.Decimal
	HasReturns     bool

	// Set on return documents only.
	OriginalDocID string
	ReturnReason  string

	EditHistory []EditRecord
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
}

// DocumentItem is one line of a document. A line is identified by
// (ProductID, BatchID); edits diff by that key, not by position.
type DocumentItem struct {
	ID               string
	DocumentID       string
	ProductID        string
	ProductName      string
	BatchID          string
	BatchCode        string
	Quantity         int64
	UnitPrice        decimal.Decimal
	MRP              decimal.Decimal
	PurchasePrice    decimal.Decimal
	DiscountPct      decimal.Decimal
	GSTRate          decimal.Decimal
	TaxableValue     decimal.Decimal
	CGST             decimal.Decimal
	SGST             decimal.Decimal
	IGST             decimal.Decimal
	Total            decimal.Decimal
	ReturnedQuantity int64
}

// EditRecord is an immutable audit record appended on every document edit.
type EditRecord struct {
	EditedBy        string           `json:"edited_by"`
	EditedAt        time.Time        `json:"edited_at"`
	BeforeTotal     decimal.Decimal  `json:"before_total"`
	AfterTotal      decimal.Decimal  `json:"after_total"`
	InventoryDeltas []InventoryDelta `json:"inventory_deltas,omitempty"`
}

// InventoryDelta records the net stock movement one edit applied to one batch.
// Positive quantity means stock went back into the batch.
type InventoryDelta struct {
	ProductID string `json:"product_id"`
	BatchID   string `json:"batch_id"`
	Quantity  int64  `json:"quantity"`
}

// ItemKey identifies a document line for edit-time diffing.
type ItemKey struct {
	ProductID string
	BatchID   string
}

// Key returns the diff key of the item.
func (it *DocumentItem) Key() ItemKey {
	return ItemKey{ProductID: it.ProductID, BatchID: it.BatchID}
}
