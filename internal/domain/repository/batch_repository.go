package repository

import (
	"time"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

// BatchRepository is the port for batch stock rows. Used inside transactions
// to guarantee consistency between batch detail and the product aggregate.
type BatchRepository interface {
	GetByID(id string) (*entity.Batch, error)
	// Available returns active, unexpired, quantity>0 batches of a product in
	// FIFO order (expiry asc, created_at asc).
	Available(shopID, productID string, asOf time.Time) ([]*entity.Batch, error)
	// AvailableForUpdate is Available with the rows locked (SELECT FOR UPDATE).
	AvailableForUpdate(shopID, productID string, asOf time.Time) ([]*entity.Batch, error)
	// GetForUpdate locks a single batch row.
	GetForUpdate(id string) (*entity.Batch, error)
	// FindMergeable finds an active batch with the same product, batch code and
	// expiry date, for merging a purchase receipt.
	FindMergeable(shopID, productID, batchCode string, expiry time.Time) (*entity.Batch, error)
	Create(batch *entity.Batch) error
	Update(batch *entity.Batch) error
	// SumActiveQuantity recomputes the product aggregate: the sum of the
	// quantities of its active batches.
	SumActiveQuantity(shopID, productID string) (int64, error)
	Delete(id string) error
}
