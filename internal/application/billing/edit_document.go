package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
)

// EditDocument rewrites a document's payload. Old and new item sets are
// diffed by (product, batch) key rather than position, and only the deltas
// move stock. The old ledger entry set is deleted and a new one posted inside
// the same transaction. Documents with returns recorded against them cannot
// be edited.
//
// Edits may drive a batch quantity negative (e.g. the stock was sold in the
// meantime); those cases are applied and reported in the returned warnings
// rather than rejected.
func (c *Coordinator) EditDocument(ctx context.Context, shopID, userID, docType, docID string, in dto.EditDocumentRequest) (*dto.DocumentResponse, error) {
	if docType != entity.DocTypeInvoice && docType != entity.DocTypePurchase {
		return nil, domain.ErrInvalidInput
	}
	if in.PartyID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	shop, newParty, err := c.resolveShopAndParty(shopID, in.PartyID, docType)
	if err != nil {
		return nil, err
	}

	productsByID := make(map[string]*entity.Product)
	for i := range in.Items {
		item := &in.Items[i]
		if item.Quantity <= 0 {
			return nil, domain.NewItemError(i, "quantity", domain.ErrInvalidInput)
		}
		product, err := c.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, domain.NewItemError(i, "product_id", domain.ErrNotFound)
		}
		if product.ShopID != shopID {
			return nil, domain.NewItemError(i, "product_id", domain.ErrForbidden)
		}
		productsByID[item.ProductID] = product
	}

	now := time.Now()
	var doc *entity.Document
	var warnings []string

	err = c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		var err error
		doc, err = docRepo.GetByIDForUpdate(docID)
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

		before := *doc
		oldCredit := creditAmount(doc)

		newItems, deltas, ws, err := c.applyItemDiff(batchRepo, productRepo, doc, in.Items, productsByID, now)
		if err != nil {
			return err
		}
		warnings = ws

		doc.Items = newItems
		doc.PartyID = newParty.ID
		doc.PaymentMode = in.PaymentMode
		doc.PaymentStatus = paymentStatus(in.PaymentMode)
		doc.TaxType = resolveTaxType(in.TaxType, shop, newParty)
		if in.Date != nil {
			doc.Date = *in.Date
		}
		totals := gst.DocumentTotals(breakups(newItems), in.OtherCharges, in.Discount)
		applyTotals(doc, totals, in.OtherCharges, in.Discount)

		// Counterparty balance: full reversal+reapply when the party changed,
		// otherwise the net delta.
		newCredit := creditAmount(doc)
		if before.PartyID != newParty.ID {
			if oldCredit.IsPositive() {
				if err := partyRepo.AdjustBalance(before.PartyID, oldCredit.Neg()); err != nil {
					return err
				}
			}
			if newCredit.IsPositive() {
				if err := partyRepo.AdjustBalance(newParty.ID, newCredit); err != nil {
					return err
				}
			}
		} else if delta := newCredit.Sub(oldCredit); !delta.IsZero() {
			if err := partyRepo.AdjustBalance(newParty.ID, delta); err != nil {
				return err
			}
		}

		// Delete-then-repost of the ledger set, bundled with the edit.
		if err := ledgerRepo.DeleteByReference(doc.Type, doc.ID); err != nil {
			return err
		}
		totalCost := invoiceCost(doc)
		if err := c.postDocumentEntries(ledgerRepo, doc, newParty, totalCost, userID, now); err != nil {
			return err
		}

		doc.EditHistory = append(doc.EditHistory, entity.EditRecord{
			EditedBy:        userID,
			EditedAt:        now,
			BeforeTotal:     before.GrandTotal,
			AfterTotal:      doc.GrandTotal,
			InventoryDeltas: deltas,
		})
		doc.UpdatedAt = now

		if err := docRepo.ReplaceItems(doc.ID, newItems); err != nil {
			return err
		}
		return docRepo.Update(doc)
	})
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		c.log.Warn().Str("document_id", doc.ID).Msg(w)
	}
	return toResponse(doc, warnings), nil
}

// invoiceCost sums quantity × batch purchase price over a document's items;
// zero for purchases (no COGS leg).
func invoiceCost(doc *entity.Document) decimal.Decimal {
	if doc.Type != entity.DocTypeInvoice {
		return decimal.Zero
	}
	var cost decimal.Decimal
	for _, it := range doc.Items {
		cost = cost.Add(it.PurchasePrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return cost
}

// applyItemDiff reconciles stock between the stored items and the requested
// ones and returns the new stored item set plus the per-batch inventory
// deltas applied (positive = stock returned to the batch).
func (c *Coordinator) applyItemDiff(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	doc *entity.Document,
	reqItems []dto.DocumentItemRequest,
	productsByID map[string]*entity.Product,
	now time.Time,
) ([]entity.DocumentItem, []entity.InventoryDelta, []string, error) {
	isInvoice := doc.Type == entity.DocTypeInvoice

	// Old quantities per (product, batch) key. Fan-out lines with the same
	// key collapse into one.
	oldQty := make(map[entity.ItemKey]int64)
	oldItems := make(map[entity.ItemKey]entity.DocumentItem)
	for _, it := range doc.Items {
		k := it.Key()
		oldQty[k] += it.Quantity
		oldItems[k] = it
	}

	var newItems []entity.DocumentItem
	var deltas []entity.InventoryDelta
	var warnings []string
	seen := make(map[entity.ItemKey]bool)

	addDelta := func(productID, batchID string, qty int64) {
		deltas = append(deltas, entity.InventoryDelta{ProductID: productID, BatchID: batchID, Quantity: qty})
	}

	// Stock movement direction per document side: invoices take from batches,
	// purchases put into them.
	take := func(batchID string, qty int64) error {
		var warning string
		var err error
		if isInvoice {
			warning, err = c.inventoryUC.DeductInTx(batchRepo, productRepo, batchID, qty, now)
		} else {
			err = c.inventoryUC.RestockInTx(batchRepo, productRepo, batchID, qty, now)
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		return err
	}
	give := func(batchID string, qty int64) error {
		var warning string
		var err error
		if isInvoice {
			err = c.inventoryUC.RestockInTx(batchRepo, productRepo, batchID, qty, now)
		} else {
			warning, err = c.inventoryUC.DeductInTx(batchRepo, productRepo, batchID, qty, now)
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		return err
	}

	// Release fully removed keys first so a bare line re-allocating the same
	// product can see the stock it is giving back.
	pinned := make(map[entity.ItemKey]bool)
	for _, req := range reqItems {
		if req.BatchID != "" {
			pinned[entity.ItemKey{ProductID: req.ProductID, BatchID: req.BatchID}] = true
		}
	}
	for k, qty := range oldQty {
		if pinned[k] || qty == 0 {
			continue
		}
		if err := give(k.BatchID, qty); err != nil {
			return nil, nil, nil, err
		}
		addDelta(k.ProductID, k.BatchID, signedDelta(isInvoice, qty))
	}

	for i, req := range reqItems {
		product := productsByID[req.ProductID]

		if req.BatchID == "" {
			if !isInvoice {
				// Purchase lines always name their batch (or batch code); a
				// bare line is a receipt for a new lot.
				items, err := c.buildPurchaseItems(batchRepo, productRepo, doc, []dto.DocumentItemRequest{req}, productsByID, now)
				if err != nil {
					return nil, nil, nil, domain.NewItemError(i, "", err)
				}
				for _, it := range items {
					newItems = append(newItems, it)
					addDelta(it.ProductID, it.BatchID, it.Quantity)
				}
				continue
			}
			// Invoice line without a batch: brand-new FIFO allocation.
			allocations, err := c.inventoryUC.AllocateAndDeductInTx(batchRepo, productRepo, doc.ShopID, req.ProductID, req.Quantity, now)
			if err != nil {
				return nil, nil, nil, domain.NewItemError(i, "", err)
			}
			for _, a := range allocations {
				newItems = append(newItems, invoiceLine(doc, product, a.Batch, req, a.Quantity))
				addDelta(req.ProductID, a.Batch.ID, -a.Quantity)
			}
			continue
		}

		batch, err := batchRepo.GetByID(req.BatchID)
		if err != nil {
			return nil, nil, nil, err
		}
		if batch == nil || batch.ShopID != doc.ShopID {
			return nil, nil, nil, domain.NewItemError(i, "batch_id", domain.ErrNotFound)
		}
		if batch.ProductID != req.ProductID {
			// A line pointing an existing batch at a different product is a
			// structural change the diff cannot safely resolve.
			return nil, nil, nil, domain.NewItemError(i, "batch_id", domain.ErrInvalidInput)
		}

		k := entity.ItemKey{ProductID: req.ProductID, BatchID: req.BatchID}
		if seen[k] {
			return nil, nil, nil, domain.NewItemError(i, "", domain.ErrDuplicate)
		}
		seen[k] = true

		prevQty := oldQty[k]
		switch {
		case prevQty == 0: // added line on a pinned batch
			if err := take(req.BatchID, req.Quantity); err != nil {
				return nil, nil, nil, domain.NewItemError(i, "", err)
			}
			addDelta(req.ProductID, req.BatchID, signedDelta(isInvoice, -req.Quantity))
		case req.Quantity > prevQty:
			d := req.Quantity - prevQty
			if err := take(req.BatchID, d); err != nil {
				return nil, nil, nil, domain.NewItemError(i, "", err)
			}
			addDelta(req.ProductID, req.BatchID, signedDelta(isInvoice, -d))
		case req.Quantity < prevQty:
			d := prevQty - req.Quantity
			if err := give(req.BatchID, d); err != nil {
				return nil, nil, nil, domain.NewItemError(i, "", err)
			}
			addDelta(req.ProductID, req.BatchID, signedDelta(isInvoice, d))
		}

		line := rebuiltLine(doc, product, batch, oldItems[k], req)
		newItems = append(newItems, line)
	}

	return newItems, deltas, warnings, nil
}

// signedDelta orients an inventory delta so positive always means stock went
// back into the batch, regardless of document side.
func signedDelta(isInvoice bool, invoiceOriented int64) int64 {
	if isInvoice {
		return invoiceOriented
	}
	return -invoiceOriented
}

// rebuiltLine reprices a surviving line with the requested quantity and the
// current request/batch data.
func rebuiltLine(doc *entity.Document, product *entity.Product, batch *entity.Batch, old entity.DocumentItem, req dto.DocumentItemRequest) entity.DocumentItem {
	line := invoiceLine(doc, product, batch, req, req.Quantity)
	if doc.Type == entity.DocTypePurchase {
		price := req.PurchasePrice
		if !price.IsPositive() {
			price = old.UnitPrice
		}
		rate := batch.GSTRate
		if req.GSTRate != nil {
			rate = *req.GSTRate
		}
		b := gst.ItemGST(req.Quantity, price, req.DiscountPct, rate, doc.TaxType)
		line.UnitPrice = price
		line.PurchasePrice = price
		line.GSTRate = rate
		line.TaxableValue = b.Taxable
		line.CGST = b.CGST
		line.SGST = b.SGST
		line.IGST = b.IGST
		line.Total = b.Total
	}
	line.ReturnedQuantity = old.ReturnedQuantity
	return line
}
