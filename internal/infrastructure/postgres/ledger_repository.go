package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, shop_id, date, account, type, amount,
		reference_type, reference_id, reference_number, party_type, party_id,
		narration, financial_year, created_at, created_by`

// LedgerRepo implements LedgerRepository over PostgreSQL (pool or tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository builds the ledger adapter. Pass a pool or tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// CreateBatch inserts the full entry set of one posting. Runs inside the
// document transaction, so readers never see a half-posted set.
func (r *LedgerRepo) CreateBatch(entries []*entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	for _, e := range entries {
		partyType := (*string)(nil)
		partyID := (*string)(nil)
		if e.PartyID != "" {
			partyType = &e.PartyType
			partyID = &e.PartyID
		}
		_, err := r.q.Exec(context.Background(), query,
			e.ID, e.ShopID, e.Date, string(e.Account), e.Type, e.Amount,
			e.ReferenceType, e.ReferenceID, e.ReferenceNumber, partyType, partyID,
			e.Narration, e.FinancialYear, e.CreatedAt, e.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

// DeleteByReference removes the entry set a document posted. Used by edits
// (delete then repost) and deletes, always inside the same transaction as the
// document write.
func (r *LedgerRepo) DeleteByReference(referenceType, referenceID string) error {
	query := `DELETE FROM ledger_entries WHERE reference_type = $1 AND reference_id = $2`
	_, err := r.q.Exec(context.Background(), query, referenceType, referenceID)
	if err != nil {
		return fmt.Errorf("delete ledger entries: %w", err)
	}
	return nil
}

// Balance computes the debit minus credit sum of an account up to asOf.
func (r *LedgerRepo) Balance(shopID string, account entity.Account, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'DEBIT' THEN amount ELSE -amount END), 0)
		FROM ledger_entries
		WHERE shop_id = $1 AND account = $2 AND date <= $3`
	var balance decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, shopID, string(account), asOf).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account balance: %w", err)
	}
	return balance, nil
}

// ListByParty lists a party's entries in chronological order within [from, to].
func (r *LedgerRepo) ListByParty(shopID, partyType, partyID string, from, to time.Time) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE shop_id = $1 AND party_type = $2 AND party_id = $3 AND date >= $4 AND date <= $5
		ORDER BY date ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, shopID, partyType, partyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list party ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var account string
	var partyType, partyID *string
	err := row.Scan(
		&e.ID, &e.ShopID, &e.Date, &account, &e.Type, &e.Amount,
		&e.ReferenceType, &e.ReferenceID, &e.ReferenceNumber, &partyType, &partyID,
		&e.Narration, &e.FinancialYear, &e.CreatedAt, &e.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	e.Account = entity.Account(account)
	if partyType != nil {
		e.PartyType = *partyType
	}
	if partyID != nil {
		e.PartyID = *partyID
	}
	return &e, nil
}
