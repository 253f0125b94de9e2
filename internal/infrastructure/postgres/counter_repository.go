package postgres

import (
	"context"
	"fmt"

	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo implements the sequence counter over PostgreSQL (pool or tx).
type CounterRepo struct {
	q Querier
}

// NewCounterRepository builds the counter adapter. Pass a pool or tx (Querier).
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Next increments and returns the counter for (shop, document type, period)
// in a single atomic statement. The upsert creates the row at 1 on first use;
// the row lock taken by the UPDATE serializes concurrent callers, so the
// returned value is unique per key even under contention. The counter is
// never rebuilt from existing document numbers.
func (r *CounterRepo) Next(shopID, documentType, periodKey string) (int64, error) {
	query := `
		INSERT INTO sequence_counters (shop_id, document_type, period_key, sequence, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (shop_id, document_type, period_key)
		DO UPDATE SET sequence = sequence_counters.sequence + 1, updated_at = now()
		RETURNING sequence`
	var seq int64
	err := r.q.QueryRow(context.Background(), query, shopID, documentType, periodKey).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
