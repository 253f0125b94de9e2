package repository

import "github.com/pharmabill/pharmabill-api/internal/domain/entity"

// ShopRepository is the port for tenant lookups (name for numbering, state
// for intra/inter-state tax resolution).
type ShopRepository interface {
	GetByID(id string) (*entity.Shop, error)
}
