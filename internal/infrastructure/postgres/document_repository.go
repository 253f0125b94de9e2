package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, shop_id, type, number, party_id, date,
		subtotal, cgst, sgst, igst, other_charges, discount, round_off, grand_total,
		payment_mode, payment_status, tax_type, ledger_entry_ids,
		returned_amount, has_returns, original_doc_id, return_reason,
		edit_history, created_at, created_by, updated_at`

const itemColumns = `id, document_id, product_id, product_name, batch_id, batch_code,
		quantity, unit_price, mrp, purchase_price, discount_pct, gst_rate,
		taxable_value, cgst, sgst, igst, total, returned_quantity`

// DocumentRepo implements DocumentRepository over PostgreSQL (pool or tx).
// The edit history lives in a jsonb column; items are rows of document_items
// owned by the document.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository builds the document adapter. Pass a pool or tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var history []byte
	err := row.Scan(
		&d.ID, &d.ShopID, &d.Type, &d.Number, &d.PartyID, &d.Date,
		&d.Subtotal, &d.CGST, &d.SGST, &d.IGST, &d.OtherCharges, &d.Discount, &d.RoundOff, &d.GrandTotal,
		&d.PaymentMode, &d.PaymentStatus, &d.TaxType, &d.LedgerEntryIDs,
		&d.ReturnedAmount, &d.HasReturns, &d.OriginalDocID, &d.ReturnReason,
		&history, &d.CreatedAt, &d.CreatedBy, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &d.EditHistory); err != nil {
			return nil, fmt.Errorf("decode edit history: %w", err)
		}
	}
	return &d, nil
}

// GetByID fetches a document with its items. Returns nil without error when absent.
func (r *DocumentRepo) GetByID(id string) (*entity.Document, error) {
	return r.get(id, false)
}

// GetByIDForUpdate fetches a document with its items, locking the document
// row for the enclosing transaction.
func (r *DocumentRepo) GetByIDForUpdate(id string) (*entity.Document, error) {
	return r.get(id, true)
}

func (r *DocumentRepo) get(id string, forUpdate bool) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	d, err := scanDocument(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	items, err := r.loadItems(d.ID)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

func (r *DocumentRepo) loadItems(docID string) ([]entity.DocumentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM document_items WHERE document_id = $1 ORDER BY created_order`
	rows, err := r.q.Query(context.Background(), query, docID)
	if err != nil {
		return nil, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	var items []entity.DocumentItem
	for rows.Next() {
		var it entity.DocumentItem
		if err := rows.Scan(
			&it.ID, &it.DocumentID, &it.ProductID, &it.ProductName, &it.BatchID, &it.BatchCode,
			&it.Quantity, &it.UnitPrice, &it.MRP, &it.PurchasePrice, &it.DiscountPct, &it.GSTRate,
			&it.TaxableValue, &it.CGST, &it.SGST, &it.IGST, &it.Total, &it.ReturnedQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create persists a document and its items. A duplicate document number for
// the shop surfaces as ErrDuplicate.
func (r *DocumentRepo) Create(doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	history, err := json.Marshal(doc.EditHistory)
	if err != nil {
		return fmt.Errorf("encode edit history: %w", err)
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err = r.q.Exec(context.Background(), query,
		doc.ID, doc.ShopID, doc.Type, doc.Number, doc.PartyID, doc.Date,
		doc.Subtotal, doc.CGST, doc.SGST, doc.IGST, doc.OtherCharges, doc.Discount, doc.RoundOff, doc.GrandTotal,
		doc.PaymentMode, doc.PaymentStatus, doc.TaxType, doc.LedgerEntryIDs,
		doc.ReturnedAmount, doc.HasReturns, doc.OriginalDocID, doc.ReturnReason,
		history, doc.CreatedAt, doc.CreatedBy, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document number %s: %w", doc.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("create document: %w", err)
	}
	return r.insertItems(doc.ID, doc.Items)
}

func (r *DocumentRepo) insertItems(docID string, items []entity.DocumentItem) error {
	query := `
		INSERT INTO document_items (` + itemColumns + `, created_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.DocumentID = docID
		_, err := r.q.Exec(context.Background(), query,
			it.ID, it.DocumentID, it.ProductID, it.ProductName, it.BatchID, it.BatchCode,
			it.Quantity, it.UnitPrice, it.MRP, it.PurchasePrice, it.DiscountPct, it.GSTRate,
			it.TaxableValue, it.CGST, it.SGST, it.IGST, it.Total, it.ReturnedQuantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert document item: %w", err)
		}
	}
	return nil
}

// Update rewrites the document header columns. Items move only through
// ReplaceItems and UpdateItemReturnedQuantity.
func (r *DocumentRepo) Update(doc *entity.Document) error {
	history, err := json.Marshal(doc.EditHistory)
	if err != nil {
		return fmt.Errorf("encode edit history: %w", err)
	}
	query := `
		UPDATE documents SET
			number = $2, party_id = $3, date = $4,
			subtotal = $5, cgst = $6, sgst = $7, igst = $8,
			other_charges = $9, discount = $10, round_off = $11, grand_total = $12,
			payment_mode = $13, payment_status = $14, tax_type = $15, ledger_entry_ids = $16,
			returned_amount = $17, has_returns = $18, edit_history = $19, updated_at = $20
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		doc.ID, doc.Number, doc.PartyID, doc.Date,
		doc.Subtotal, doc.CGST, doc.SGST, doc.IGST,
		doc.OtherCharges, doc.Discount, doc.RoundOff, doc.GrandTotal,
		doc.PaymentMode, doc.PaymentStatus, doc.TaxType, doc.LedgerEntryIDs,
		doc.ReturnedAmount, doc.HasReturns, history, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// ReplaceItems swaps the full item set of a document.
func (r *DocumentRepo) ReplaceItems(docID string, items []entity.DocumentItem) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM document_items WHERE document_id = $1`, docID)
	if err != nil {
		return fmt.Errorf("clear document items: %w", err)
	}
	return r.insertItems(docID, items)
}

// UpdateItemReturnedQuantity records how much of a line has been returned.
func (r *DocumentRepo) UpdateItemReturnedQuantity(itemID string, returnedQuantity int64) error {
	query := `UPDATE document_items SET returned_quantity = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, itemID, returnedQuantity)
	if err != nil {
		return fmt.Errorf("update returned quantity: %w", err)
	}
	return nil
}

// Delete removes a document and its items.
func (r *DocumentRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM document_items WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("delete document items: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ListReturns lists the return documents recorded against a document.
func (r *DocumentRepo) ListReturns(originalDocID string) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE original_doc_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, originalDocID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return document: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CountByBatch counts document lines referencing a batch.
func (r *DocumentRepo) CountByBatch(batchID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM document_items WHERE batch_id = $1`, batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items by batch: %w", err)
	}
	return n, nil
}
