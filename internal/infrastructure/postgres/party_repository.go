package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implements PartyRepository over PostgreSQL (pool or tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository builds the party adapter. Pass a pool or tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// GetByID fetches a counterparty. Returns nil without error when absent.
func (r *PartyRepo) GetByID(id string) (*entity.Party, error) {
	query := `
		SELECT id, shop_id, type, name, gstin, state, phone, balance, created_at, updated_at
		FROM parties WHERE id = $1`
	var p entity.Party
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.ShopID, &p.Type, &p.Name, &p.GSTIN, &p.State, &p.Phone,
		&p.Balance, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &p, nil
}

// AdjustBalance adds delta to the party balance in place. A single UPDATE so
// concurrent adjustments never lose increments.
func (r *PartyRepo) AdjustBalance(id string, delta decimal.Decimal) error {
	query := `UPDATE parties SET balance = balance + $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust party balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adjust party balance: party %s not found", id)
	}
	return nil
}
