package billing

import (
	"context"
	"time"

	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// DeleteDocument removes a document and unwinds its side effects: stock moves
// back the way it came, the counterparty balance is reversed for credit
// documents, and the ledger entry set is deleted. Documents with returns
// recorded against them cannot be deleted; the return must be handled first.
//
// Unwinding a purchase deducts its batches, which may leave them negative if
// the received stock was already sold. Those cases are applied and reported
// in the returned warnings.
func (c *Coordinator) DeleteDocument(ctx context.Context, shopID, docType, docID string) ([]string, error) {
	if docType != entity.DocTypeInvoice && docType != entity.DocTypePurchase {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var warnings []string

	err := c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if doc.ShopID != shopID {
			return domain.ErrForbidden
		}
		if doc.Type != docType {
			return domain.ErrInvalidInput
		}
		if doc.HasReturns {
			return domain.ErrDocumentHasReturns
		}
		returns, err := docRepo.ListReturns(doc.ID)
		if err != nil {
			return err
		}
		if len(returns) > 0 {
			return domain.ErrDocumentHasReturns
		}

		for _, it := range doc.Items {
			if doc.Type == entity.DocTypeInvoice {
				if err := c.inventoryUC.RestockInTx(batchRepo, productRepo, it.BatchID, it.Quantity, now); err != nil {
					return err
				}
			} else {
				warning, err := c.inventoryUC.DeductInTx(batchRepo, productRepo, it.BatchID, it.Quantity, now)
				if err != nil {
					return err
				}
				if warning != "" {
					warnings = append(warnings, warning)
				}
			}
		}

		if credit := creditAmount(doc); credit.IsPositive() {
			if err := partyRepo.AdjustBalance(doc.PartyID, credit.Neg()); err != nil {
				return err
			}
		}

		if err := ledgerRepo.DeleteByReference(doc.Type, doc.ID); err != nil {
			return err
		}
		return docRepo.Delete(doc.ID)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("document_id", docID).Str("type", docType).Msg("document deleted")
	return warnings, nil
}
