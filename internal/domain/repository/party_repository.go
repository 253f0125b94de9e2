package repository

import (
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

// PartyRepository is the port for counterparties (customers and suppliers)
// and their running balances.
type PartyRepository interface {
	GetByID(id string) (*entity.Party, error)
	// AdjustBalance adds delta (may be negative) to the party's balance.
	AdjustBalance(id string, delta decimal.Decimal) error
}
