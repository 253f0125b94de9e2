package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/numbering"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
)

// CreateReturn records a return against an existing invoice or purchase. The
// return is a document of its own, numbered as a monthly credit or debit
// note, with its lines priced from the original lines so the reversal matches
// what was actually charged.
//
// Sales returns restock the original batches unless the reason is DAMAGED or
// EXPIRED, in which case the goods are unsellable and stay out of stock.
// Purchase returns always deduct, and may drive a batch negative if the
// received stock was already sold; those cases are reported as warnings.
func (c *Coordinator) CreateReturn(ctx context.Context, shopID, userID, originalDocID string, in dto.CreateReturnRequest) (*dto.DocumentResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Reason != entity.ReturnReasonDamaged && in.Reason != entity.ReturnReasonExpired &&
		in.Reason != entity.ReturnReasonUnwanted && in.Reason != entity.ReturnReasonWrongItem {
		return nil, domain.ErrInvalidInput
	}

	shop, err := c.shopRepo.GetByID(shopID)
	if err != nil || shop == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var ret *entity.Document
	var warnings []string

	err = c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		original, err := docRepo.GetByIDForUpdate(originalDocID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrNotFound
		}
		if original.ShopID != shopID {
			return domain.ErrForbidden
		}

		var returnType string
		switch original.Type {
		case entity.DocTypeInvoice:
			returnType = entity.DocTypeSalesReturn
		case entity.DocTypePurchase:
			returnType = entity.DocTypePurchaseReturn
		default:
			return domain.ErrInvalidInput
		}

		party, err := partyRepo.GetByID(original.PartyID)
		if err != nil || party == nil {
			return domain.ErrNotFound
		}

		linesByID := make(map[string]*entity.DocumentItem)
		for i := range original.Items {
			linesByID[original.Items[i].ID] = &original.Items[i]
		}

		ret = &entity.Document{
			ID:            uuid.New().String(),
			ShopID:        shopID,
			Type:          returnType,
			PartyID:       original.PartyID,
			Date:          now,
			PaymentMode:   original.PaymentMode,
			PaymentStatus: paymentStatus(original.PaymentMode),
			TaxType:       original.TaxType,
			OriginalDocID: original.ID,
			ReturnReason:  in.Reason,
			CreatedAt:     now,
			CreatedBy:     userID,
			UpdatedAt:     now,
		}

		restock := returnType == entity.DocTypeSalesReturn &&
			in.Reason != entity.ReturnReasonDamaged && in.Reason != entity.ReturnReasonExpired

		for i, reqItem := range in.Items {
			if reqItem.Quantity <= 0 {
				return domain.NewItemError(i, "quantity", domain.ErrInvalidInput)
			}
			line := linesByID[reqItem.ItemID]
			if line == nil {
				return domain.NewItemError(i, "item_id", domain.ErrNotFound)
			}
			returnable := line.Quantity - line.ReturnedQuantity
			if reqItem.Quantity > returnable {
				return domain.NewItemError(i, "quantity", domain.ErrInvalidInput)
			}

			switch {
			case restock:
				if err := c.inventoryUC.RestockInTx(batchRepo, productRepo, line.BatchID, reqItem.Quantity, now); err != nil {
					return err
				}
			case returnType == entity.DocTypePurchaseReturn:
				warning, err := c.inventoryUC.DeductInTx(batchRepo, productRepo, line.BatchID, reqItem.Quantity, now)
				if err != nil {
					return err
				}
				if warning != "" {
					warnings = append(warnings, warning)
				}
			}

			b := gst.ItemGST(reqItem.Quantity, line.UnitPrice, line.DiscountPct, line.GSTRate, original.TaxType)
			ret.Items = append(ret.Items, entity.DocumentItem{
				ID:            uuid.New().String(),
				DocumentID:    ret.ID,
				ProductID:     line.ProductID,
				ProductName:   line.ProductName,
				BatchID:       line.BatchID,
				BatchCode:     line.BatchCode,
				Quantity:      reqItem.Quantity,
				UnitPrice:     line.UnitPrice,
				MRP:           line.MRP,
				PurchasePrice: line.PurchasePrice,
				DiscountPct:   line.DiscountPct,
				GSTRate:       line.GSTRate,
				TaxableValue:  b.Taxable,
				CGST:          b.CGST,
				SGST:          b.SGST,
				IGST:          b.IGST,
				Total:         b.Total,
			})

			line.ReturnedQuantity += reqItem.Quantity
			if err := docRepo.UpdateItemReturnedQuantity(line.ID, line.ReturnedQuantity); err != nil {
				return err
			}
		}

		totals := gst.DocumentTotals(breakups(ret.Items), decimal.Zero, decimal.Zero)
		applyTotals(ret, totals, decimal.Zero, decimal.Zero)

		seq, err := counterRepo.Next(shopID, returnType, numbering.MonthPeriodKey(now))
		if err != nil {
			return err
		}
		ret.Number = numbering.NoteNumber(numbering.PrefixFor(returnType), now, numbering.OrgInitials(shop.Name), seq)

		if err := docRepo.Create(ret); err != nil {
			return err
		}

		// A credit-mode original means the counterparty still owes (or is
		// owed) the returned amount; shrink the outstanding balance.
		if original.PaymentMode == entity.PaymentModeCredit {
			if err := partyRepo.AdjustBalance(original.PartyID, ret.GrandTotal.Neg()); err != nil {
				return err
			}
		}

		if err := c.postDocumentEntries(ledgerRepo, ret, party, decimal.Zero, userID, now); err != nil {
			return err
		}
		if err := docRepo.Update(ret); err != nil {
			return err
		}

		original.ReturnedAmount = original.ReturnedAmount.Add(ret.GrandTotal)
		original.HasReturns = true
		original.UpdatedAt = now
		return docRepo.Update(original)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("shop_id", shopID).
		Str("original_id", originalDocID).
		Str("number", ret.Number).
		Str("reason", in.Reason).
		Msg("return recorded")
	return toResponse(ret, warnings), nil
}
