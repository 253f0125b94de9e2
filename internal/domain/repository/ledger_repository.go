package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

// LedgerRepository is the port for double-entry ledger rows. Entries for one
// posting are inserted as a single batch so no reader ever observes a
// half-posted set.
type LedgerRepository interface {
	CreateBatch(entries []*entity.LedgerEntry) error
	DeleteByReference(referenceType, referenceID string) error
	// Balance returns Σdebit − Σcredit for an account over entries dated <= asOf.
	Balance(shopID string, account entity.Account, asOf time.Time) (decimal.Decimal, error)
	// ListByParty returns a party's entries in chronological order within the range.
	ListByParty(shopID, partyType, partyID string, from, to time.Time) ([]*entity.LedgerEntry, error)
}
