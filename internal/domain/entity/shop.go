package entity

import "time"

// Shop is a tenant. Every entity in the system carries a ShopID and no
// operation may read or write across shop boundaries.
type Shop struct {
	ID        string
	Name      string // used to derive the document-number initials
	GSTIN     string
	State     string // GST state of the shop, decides intra vs inter-state tax
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
