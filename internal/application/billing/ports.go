package billing

import (
	"context"

	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// TxRunner runs a function inside a transaction spanning every repository a
// document-lifecycle operation touches. Any error returned from fn rolls the
// whole transaction back; this is the all-or-nothing commit boundary.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}
