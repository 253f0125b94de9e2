package entity

import "time"

// SequenceCounter is the keyed counter behind document numbering. Unique per
// (ShopID, DocumentType, PeriodKey); Sequence is monotonically non-decreasing
// and is never reset and a period rollover simply starts a new row at 1.
//
// The counter is only ever advanced through an atomic increment-and-fetch at
// the storage layer. "Next number" is never reconstructed by scanning
// existing documents.
type SequenceCounter struct {
	ShopID       string
	DocumentType string
	PeriodKey    string // "2026" for invoices/purchases, "2026-01" for notes
	Sequence     int64
	UpdatedAt    time.Time
}
