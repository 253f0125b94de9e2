package dto

import "github.com/shopspring/decimal"

// BatchResponse is one batch row on the read side.
type BatchResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	BatchCode     string          `json:"batch_code"`
	ExpiryDate    string          `json:"expiry_date"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	Quantity      int64           `json:"quantity"`
	Active        bool            `json:"active"`
}

// AllocationPreviewRequest asks which batches a sale of Quantity would consume.
type AllocationPreviewRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// AllocationResponse is one slice of a FIFO allocation preview.
type AllocationResponse struct {
	BatchID      string          `json:"batch_id"`
	BatchCode    string          `json:"batch_code"`
	Quantity     int64           `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MRP          decimal.Decimal `json:"mrp"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
}
