package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, shop_id, product_id, batch_code, expiry_date, mfg_date,
		mrp, purchase_price, selling_price, gst_rate, quantity, active, depleted_at, created_at, updated_at`

// BatchRepo implements BatchRepository over PostgreSQL (pool or tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository builds the batch adapter. Pass a pool or tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ShopID, &b.ProductID, &b.BatchCode, &b.ExpiryDate, &b.MfgDate,
		&b.MRP, &b.PurchasePrice, &b.SellingPrice, &b.GSTRate,
		&b.Quantity, &b.Active, &b.DepletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID fetches a batch. Returns nil without error when absent.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Available lists the sellable batches of a product in FIFO order: active,
// not expired at asOf, with stock remaining. Expiry ascending, oldest receipt
// first on ties.
func (r *BatchRepo) Available(shopID, productID string, asOf time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE shop_id = $1 AND product_id = $2 AND active AND quantity > 0 AND expiry_date >= $3
		ORDER BY expiry_date ASC, created_at ASC`
	return r.listBatches(query, shopID, productID, asOf)
}

// AvailableForUpdate is Available with the rows locked for the enclosing
// transaction so a concurrent sale cannot allocate the same stock.
func (r *BatchRepo) AvailableForUpdate(shopID, productID string, asOf time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE shop_id = $1 AND product_id = $2 AND active AND quantity > 0 AND expiry_date >= $3
		ORDER BY expiry_date ASC, created_at ASC
		FOR UPDATE`
	return r.listBatches(query, shopID, productID, asOf)
}

func (r *BatchRepo) listBatches(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// GetForUpdate fetches and locks one batch row.
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// FindMergeable looks for an active batch with the same product, code and
// expiry, locking it so a purchase receipt can merge into it.
func (r *BatchRepo) FindMergeable(shopID, productID, batchCode string, expiry time.Time) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE shop_id = $1 AND product_id = $2 AND batch_code = $3 AND expiry_date = $4 AND active
		LIMIT 1
		FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, shopID, productID, batchCode, expiry))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find mergeable batch: %w", err)
	}
	return b, nil
}

// Create persists a new batch.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ShopID, batch.ProductID, batch.BatchCode, batch.ExpiryDate, batch.MfgDate,
		batch.MRP, batch.PurchasePrice, batch.SellingPrice, batch.GSTRate,
		batch.Quantity, batch.Active, batch.DepletedAt, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a batch.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	query := `
		UPDATE batches SET
			batch_code = $2, expiry_date = $3, mfg_date = $4, mrp = $5,
			purchase_price = $6, selling_price = $7, gst_rate = $8,
			quantity = $9, active = $10, depleted_at = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.BatchCode, batch.ExpiryDate, batch.MfgDate, batch.MRP,
		batch.PurchasePrice, batch.SellingPrice, batch.GSTRate,
		batch.Quantity, batch.Active, batch.DepletedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// SumActiveQuantity recomputes the product aggregate from its active batches.
func (r *BatchRepo) SumActiveQuantity(shopID, productID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM batches WHERE shop_id = $1 AND product_id = $2 AND active`
	var total int64
	err := r.q.QueryRow(context.Background(), query, shopID, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum active batch quantity: %w", err)
	}
	return total, nil
}

// Delete removes a batch row. The use case guards against deleting referenced
// batches first.
func (r *BatchRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}
