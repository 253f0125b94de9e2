package inventory

import (
	"context"

	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// TxRunner runs a function inside a DB transaction with repositories bound to
// that transaction. Guarantees atomicity for standalone inventory operations
// (batch hard-delete); document-lifecycle operations run under the billing
// coordinator's own runner and call the *InTx methods with its repositories.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		docRepo repository.DocumentRepository,
	) error) error
}
