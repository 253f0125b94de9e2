package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// UseCase is the batch inventory ledger: FIFO allocation, deduction, restock
// and aggregate-stock recomputation. The *InTx methods operate on
// transaction-bound repositories supplied by the caller; reads use the
// pool-bound repositories injected here.
type UseCase struct {
	txRunner    TxRunner
	batchRepo   repository.BatchRepository
	productRepo repository.ProductRepository
}

// NewUseCase builds the inventory use case.
func NewUseCase(txRunner TxRunner, batchRepo repository.BatchRepository, productRepo repository.ProductRepository) *UseCase {
	return &UseCase{txRunner: txRunner, batchRepo: batchRepo, productRepo: productRepo}
}

// AvailableBatches returns the product's active, unexpired, quantity>0 batches
// in FIFO order (expiry asc, created_at asc).
func (uc *UseCase) AvailableBatches(ctx context.Context, shopID, productID string) ([]*entity.Batch, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if product.ShopID != shopID {
		return nil, domain.ErrForbidden
	}
	return uc.batchRepo.Available(shopID, productID, time.Now())
}

// AllocateForSale is the read-side allocation preview: the FIFO plan that a
// sale of qty units would take, without touching any batch.
func (uc *UseCase) AllocateForSale(ctx context.Context, shopID, productID string, qty int64) ([]entity.Allocation, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	batches, err := uc.AvailableBatches(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}
	return PlanAllocation(batches, qty)
}

// PlanAllocation walks batches in the given order, consuming from each until
// qty is satisfied. Fails with ErrInsufficientStock when the total available
// falls short; no batch is mutated either way.
func PlanAllocation(batches []*entity.Batch, qty int64) ([]entity.Allocation, error) {
	var total int64
	for _, b := range batches {
		total += b.Quantity
	}
	if total < qty {
		return nil, domain.ErrInsufficientStock
	}

	remaining := qty
	allocations := make([]entity.Allocation, 0, 2)
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		if take == 0 {
			continue
		}
		allocations = append(allocations, entity.Allocation{
			Batch:         b,
			Quantity:      take,
			SellingPrice:  b.SellingPrice,
			PurchasePrice: b.PurchasePrice,
			MRP:           b.MRP,
			GSTRate:       b.GSTRate,
		})
		remaining -= take
	}
	return allocations, nil
}

// AllocateAndDeductInTx locks the product's available batches, plans the FIFO
// allocation and applies the deductions, recomputing the product aggregate
// once at the end. Must run inside the document transaction it supports.
func (uc *UseCase) AllocateAndDeductInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	shopID, productID string,
	qty int64,
	now time.Time,
) ([]entity.Allocation, error) {
	batches, err := batchRepo.AvailableForUpdate(shopID, productID, now)
	if err != nil {
		return nil, err
	}
	allocations, err := PlanAllocation(batches, qty)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if err := applyDeduct(batchRepo, a.Batch, a.Quantity, now); err != nil {
			return nil, err
		}
	}
	if err := uc.RecomputeStockInTx(batchRepo, productRepo, shopID, productID); err != nil {
		return nil, err
	}
	return allocations, nil
}

// DeductExactInTx removes qty from one caller-chosen batch for a sale,
// rejecting the deduction with ErrInsufficientStock when the batch cannot
// cover it. Used by document creation, where stock must never go negative.
func (uc *UseCase) DeductExactInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	shopID, productID, batchID string,
	qty int64,
	now time.Time,
) (*entity.Batch, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.ShopID != shopID {
		return nil, domain.ErrNotFound
	}
	if batch.ProductID != productID {
		return nil, domain.ErrInvalidInput
	}
	if !batch.Active || batch.Expired(now) || batch.Quantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	if err := applyDeduct(batchRepo, batch, qty, now); err != nil {
		return nil, err
	}
	if err := uc.RecomputeStockInTx(batchRepo, productRepo, shopID, productID); err != nil {
		return nil, err
	}
	return batch, nil
}

// DeductInTx removes qty from a specific batch (locking it), marking it
// inactive with a depletion stamp when the quantity reaches zero. A deduction
// that drives the quantity negative is applied and reported as a warning;
// the policy decision is surfaced to the caller, not made here.
func (uc *UseCase) DeductInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	batchID string,
	qty int64,
	now time.Time,
) (warning string, err error) {
	if qty <= 0 {
		return "", domain.ErrInvalidInput
	}
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return "", err
	}
	if batch == nil {
		return "", domain.ErrNotFound
	}
	if err := applyDeduct(batchRepo, batch, qty, now); err != nil {
		return "", err
	}
	if batch.Quantity < 0 {
		warning = fmt.Sprintf("batch %s quantity went negative (%d)", batch.BatchCode, batch.Quantity)
	}
	if err := uc.RecomputeStockInTx(batchRepo, productRepo, batch.ShopID, batch.ProductID); err != nil {
		return "", err
	}
	return warning, nil
}

// RestockInTx returns qty to a batch (locking it), reactivating a depleted
// batch, and recomputes the product aggregate.
func (uc *UseCase) RestockInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	batchID string,
	qty int64,
	now time.Time,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}
	batch.Quantity += qty
	if batch.Quantity > 0 {
		batch.Active = true
		batch.DepletedAt = nil
	}
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return err
	}
	return uc.RecomputeStockInTx(batchRepo, productRepo, batch.ShopID, batch.ProductID)
}

// applyDeduct mutates one already-locked batch.
func applyDeduct(batchRepo repository.BatchRepository, batch *entity.Batch, qty int64, now time.Time) error {
	batch.Quantity -= qty
	if batch.Quantity <= 0 {
		batch.Active = false
		depleted := now
		batch.DepletedAt = &depleted
	}
	batch.UpdatedAt = now
	return batchRepo.Update(batch)
}

// BatchReceipt is the purchase-receipt input for CreateOrMergeBatchInTx.
// BatchCode and ExpiryDate may be empty when the supplier omits them.
type BatchReceipt struct {
	ShopID        string
	ProductID     string
	BatchCode     string
	ExpiryDate    time.Time
	MfgDate       time.Time
	MRP           decimal.Decimal
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	GSTRate       decimal.Decimal
	Quantity      int64
}

// CreateOrMergeBatchInTx merges a purchase receipt into an existing batch with
// the same product+batchCode+expiry, or creates a new one. A missing batch
// code is auto-generated and a missing expiry defaults to one year out.
func (uc *UseCase) CreateOrMergeBatchInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	receipt BatchReceipt,
	now time.Time,
) (*entity.Batch, error) {
	if receipt.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if receipt.BatchCode == "" {
		receipt.BatchCode = generateBatchCode()
	}
	if receipt.ExpiryDate.IsZero() {
		receipt.ExpiryDate = now.AddDate(1, 0, 0)
	}

	batch, err := batchRepo.FindMergeable(receipt.ShopID, receipt.ProductID, receipt.BatchCode, receipt.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		batch.Quantity += receipt.Quantity
		batch.Active = true
		batch.DepletedAt = nil
		batch.PurchasePrice = receipt.PurchasePrice
		if receipt.SellingPrice.IsPositive() {
			batch.SellingPrice = receipt.SellingPrice
		}
		if receipt.MRP.IsPositive() {
			batch.MRP = receipt.MRP
		}
		batch.UpdatedAt = now
		if err := batchRepo.Update(batch); err != nil {
			return nil, err
		}
	} else {
		batch = &entity.Batch{
			ID:            uuid.New().String(),
			ShopID:        receipt.ShopID,
			ProductID:     receipt.ProductID,
			BatchCode:     receipt.BatchCode,
			ExpiryDate:    receipt.ExpiryDate,
			MfgDate:       receipt.MfgDate,
			MRP:           receipt.MRP,
			PurchasePrice: receipt.PurchasePrice,
			SellingPrice:  receipt.SellingPrice,
			GSTRate:       receipt.GSTRate,
			Quantity:      receipt.Quantity,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := batchRepo.Create(batch); err != nil {
			return nil, err
		}
	}
	if err := uc.RecomputeStockInTx(batchRepo, productRepo, receipt.ShopID, receipt.ProductID); err != nil {
		return nil, err
	}
	return batch, nil
}

// RecomputeStockInTx persists the product aggregate as the sum of its active
// batches' quantities. Always recomputed, never incremented independently, so
// the cached total cannot drift from the detail rows.
func (uc *UseCase) RecomputeStockInTx(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	shopID, productID string,
) error {
	total, err := batchRepo.SumActiveQuantity(shopID, productID)
	if err != nil {
		return err
	}
	return productRepo.UpdateStock(productID, total)
}

// DeleteBatch hard-deletes a batch. Permitted only when zero documents
// reference it; otherwise the batch stays (inactive at worst).
func (uc *UseCase) DeleteBatch(ctx context.Context, shopID, batchID string) error {
	return uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		docRepo repository.DocumentRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil || batch.ShopID != shopID {
			return domain.ErrNotFound
		}
		refs, err := docRepo.CountByBatch(batchID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrConflict
		}
		if err := batchRepo.Delete(batchID); err != nil {
			return err
		}
		return uc.RecomputeStockInTx(batchRepo, productRepo, batch.ShopID, batch.ProductID)
	})
}

func generateBatchCode() string {
	return "B-" + strings.ToUpper(uuid.New().String()[:8])
}
