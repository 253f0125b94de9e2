package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentItemRequest is one requested line. For invoices BatchID is optional
// (empty means FIFO allocation); for purchases the batch fields describe the
// received lot.
type DocumentItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	BatchID     string          `json:"batch_id,omitempty"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // zero = use batch/product price
	DiscountPct decimal.Decimal `json:"discount_pct"`

	// Purchase receipt fields.
	BatchCode     string          `json:"batch_code,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	MfgDate       *time.Time      `json:"mfg_date,omitempty"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	GSTRate       *decimal.Decimal `json:"gst_rate,omitempty"` // nil = product rate
}

// CreateDocumentRequest creates an invoice or purchase.
type CreateDocumentRequest struct {
	PartyID      string                `json:"party_id" validate:"required"`
	Date         *time.Time            `json:"date,omitempty"`
	Items        []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMode  string                `json:"payment_mode" validate:"required,oneof=CASH BANK CREDIT"`
	TaxType      string                `json:"tax_type,omitempty" validate:"omitempty,oneof=INTRA INTER"`
	OtherCharges decimal.Decimal       `json:"other_charges"`
	Discount     decimal.Decimal       `json:"discount"`
}

// EditDocumentRequest replaces a document's payload. Items are diffed against
// the stored ones by (product, batch) key.
type EditDocumentRequest struct {
	PartyID      string                `json:"party_id" validate:"required"`
	Date         *time.Time            `json:"date,omitempty"`
	Items        []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMode  string                `json:"payment_mode" validate:"required,oneof=CASH BANK CREDIT"`
	TaxType      string                `json:"tax_type,omitempty" validate:"omitempty,oneof=INTRA INTER"`
	OtherCharges decimal.Decimal       `json:"other_charges"`
	Discount     decimal.Decimal       `json:"discount"`
}

// ReturnItemRequest asks to return a quantity against one original line.
type ReturnItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateReturnRequest records a return against an existing document.
type CreateReturnRequest struct {
	Items  []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason string              `json:"reason" validate:"required,oneof=DAMAGED EXPIRED UNWANTED WRONG_ITEM"`
}

// RecordPaymentRequest settles part of a counterparty balance.
type RecordPaymentRequest struct {
	PartyID     string          `json:"party_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentMode string          `json:"payment_mode" validate:"required,oneof=CASH BANK"`
	Narration   string          `json:"narration"`
}

// RecordExpenseRequest posts a categorized expense.
type RecordExpenseRequest struct {
	Category    string          `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentMode string          `json:"payment_mode" validate:"required,oneof=CASH BANK"`
	Narration   string          `json:"narration"`
}

// DocumentItemResponse mirrors one stored line.
type DocumentItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	BatchID          string          `json:"batch_id"`
	BatchCode        string          `json:"batch_code"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPct      decimal.Decimal `json:"discount_pct"`
	GSTRate          decimal.Decimal `json:"gst_rate"`
	TaxableValue     decimal.Decimal `json:"taxable_value"`
	CGST             decimal.Decimal `json:"cgst"`
	SGST             decimal.Decimal `json:"sgst"`
	IGST             decimal.Decimal `json:"igst"`
	Total            decimal.Decimal `json:"total"`
	ReturnedQuantity int64           `json:"returned_quantity"`
}

// DocumentResponse is the full document view returned by lifecycle operations.
type DocumentResponse struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Number        string                 `json:"number"`
	PartyID       string                 `json:"party_id"`
	Date          string                 `json:"date"`
	Items         []DocumentItemResponse `json:"items"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	CGST          decimal.Decimal        `json:"cgst"`
	SGST          decimal.Decimal        `json:"sgst"`
	IGST          decimal.Decimal        `json:"igst"`
	OtherCharges  decimal.Decimal        `json:"other_charges"`
	Discount      decimal.Decimal        `json:"discount"`
	RoundOff      decimal.Decimal        `json:"round_off"`
	GrandTotal    decimal.Decimal        `json:"grand_total"`
	PaymentMode   string                 `json:"payment_mode"`
	PaymentStatus string                 `json:"payment_status"`
	OriginalDocID string                 `json:"original_doc_id,omitempty"`
	ReturnReason  string                 `json:"return_reason,omitempty"`
	Warnings      []string               `json:"warnings,omitempty"`
}
