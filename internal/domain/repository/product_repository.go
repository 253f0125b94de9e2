package repository

import "github.com/pharmabill/pharmabill-api/internal/domain/entity"

// ProductRepository is the port for product lookups and the derived stock
// aggregate. Product CRUD itself lives outside this core.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// UpdateStock persists the recomputed aggregate stock of a product.
	UpdateStock(id string, quantity int64) error
}
