package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/application/inventory"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/numbering"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
)

// CreateDocument creates an invoice or purchase: validate items, move stock,
// compute totals, mint the number, persist the document, adjust the
// counterparty balance and post the ledger entries, all in one transaction.
// Validation failures occur before any write; any failure after the first
// write aborts the whole operation. The one documented gap: a sequence number
// consumed by a transaction that later aborts stays consumed.
func (c *Coordinator) CreateDocument(ctx context.Context, shopID, userID, docType string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if docType != entity.DocTypeInvoice && docType != entity.DocTypePurchase {
		return nil, domain.ErrInvalidInput
	}
	if in.PartyID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	shop, party, err := c.resolveShopAndParty(shopID, in.PartyID, docType)
	if err != nil {
		return nil, err
	}

	// Validate products and quantities before the commit boundary (read-only).
	productsByID := make(map[string]*entity.Product)
	for i := range in.Items {
		item := &in.Items[i]
		if item.Quantity <= 0 {
			return nil, domain.NewItemError(i, "quantity", domain.ErrInvalidInput)
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.NewItemError(i, "unit_price", domain.ErrInvalidInput)
		}
		product, err := c.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, domain.NewItemError(i, "product_id", domain.ErrNotFound)
		}
		if product.ShopID != shopID {
			return nil, domain.NewItemError(i, "product_id", domain.ErrForbidden)
		}
		productsByID[item.ProductID] = product
		if docType == entity.DocTypePurchase && item.PurchasePrice.IsNegative() {
			return nil, domain.NewItemError(i, "purchase_price", domain.ErrInvalidInput)
		}
	}

	now := time.Now()
	docDate := now
	if in.Date != nil {
		docDate = *in.Date
	}
	taxType := resolveTaxType(in.TaxType, shop, party)

	doc := &entity.Document{
		ID:            uuid.New().String(),
		ShopID:        shopID,
		Type:          docType,
		PartyID:       party.ID,
		Date:          docDate,
		PaymentMode:   in.PaymentMode,
		PaymentStatus: paymentStatus(in.PaymentMode),
		TaxType:       taxType,
		CreatedAt:     now,
		CreatedBy:     userID,
		UpdatedAt:     now,
	}

	err = c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		var totalCost decimal.Decimal
		var err error
		if docType == entity.DocTypeInvoice {
			doc.Items, totalCost, err = c.buildInvoiceItems(batchRepo, productRepo, doc, in.Items, productsByID, now)
		} else {
			doc.Items, err = c.buildPurchaseItems(batchRepo, productRepo, doc, in.Items, productsByID, now)
		}
		if err != nil {
			return err
		}

		totals := gst.DocumentTotals(breakups(doc.Items), in.OtherCharges, in.Discount)
		applyTotals(doc, totals, in.OtherCharges, in.Discount)

		seq, err := counterRepo.Next(shopID, docType, numbering.YearPeriodKey(docDate))
		if err != nil {
			return err
		}
		doc.Number = numbering.DocumentNumber(numbering.PrefixFor(docType), docDate, numbering.OrgInitials(shop.Name), seq)

		if err := docRepo.Create(doc); err != nil {
			return err
		}

		if credit := creditAmount(doc); credit.IsPositive() {
			if err := partyRepo.AdjustBalance(party.ID, credit); err != nil {
				return err
			}
		}

		if err := c.postDocumentEntries(ledgerRepo, doc, party, totalCost, userID, now); err != nil {
			return err
		}
		return docRepo.Update(doc)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("shop_id", shopID).
		Str("type", docType).
		Str("number", doc.Number).
		Str("grand_total", doc.GrandTotal.String()).
		Msg("document created")
	return toResponse(doc, nil), nil
}

// buildInvoiceItems turns requested lines into stored items, consuming stock.
// A line without a batch is satisfied FIFO and may fan out into several items
// (one per consumed batch); a pinned batch yields exactly one.
func (c *Coordinator) buildInvoiceItems(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	doc *entity.Document,
	reqItems []dto.DocumentItemRequest,
	productsByID map[string]*entity.Product,
	now time.Time,
) ([]entity.DocumentItem, decimal.Decimal, error) {
	var items []entity.DocumentItem
	var totalCost decimal.Decimal

	for i, req := range reqItems {
		product := productsByID[req.ProductID]

		if req.BatchID != "" {
			batch, err := c.inventoryUC.DeductExactInTx(batchRepo, productRepo,
				doc.ShopID, req.ProductID, req.BatchID, req.Quantity, now)
			if err != nil {
				return nil, decimal.Zero, domain.NewItemError(i, "batch_id", err)
			}
			items = append(items, invoiceLine(doc, product, batch, req, req.Quantity))
			totalCost = totalCost.Add(batch.PurchasePrice.Mul(decimal.NewFromInt(req.Quantity)))
			continue
		}

		allocations, err := c.inventoryUC.AllocateAndDeductInTx(batchRepo, productRepo,
			doc.ShopID, req.ProductID, req.Quantity, now)
		if err != nil {
			return nil, decimal.Zero, domain.NewItemError(i, "", err)
		}
		for _, a := range allocations {
			items = append(items, invoiceLine(doc, product, a.Batch, req, a.Quantity))
			totalCost = totalCost.Add(a.PurchasePrice.Mul(decimal.NewFromInt(a.Quantity)))
		}
	}
	return items, totalCost, nil
}

// invoiceLine prices one stored line from the batch (request overrides win)
// and computes its tax breakup.
func invoiceLine(doc *entity.Document, product *entity.Product, batch *entity.Batch, req dto.DocumentItemRequest, qty int64) entity.DocumentItem {
	price := req.UnitPrice
	if !price.IsPositive() {
		price = batch.SellingPrice
	}
	if !price.IsPositive() {
		price = product.SellingPrice
	}
	rate := batch.GSTRate
	if !rate.IsPositive() {
		rate = product.GSTRate
	}
	b := gst.ItemGST(qty, price, req.DiscountPct, rate, doc.TaxType)
	return entity.DocumentItem{
		ID:            uuid.New().String(),
		DocumentID:    doc.ID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		BatchID:       batch.ID,
		BatchCode:     batch.BatchCode,
		Quantity:      qty,
		UnitPrice:     price,
		MRP:           batch.MRP,
		PurchasePrice: batch.PurchasePrice,
		DiscountPct:   req.DiscountPct,
		GSTRate:       rate,
		TaxableValue:  b.Taxable,
		CGST:          b.CGST,
		SGST:          b.SGST,
		IGST:          b.IGST,
		Total:         b.Total,
	}
}

// buildPurchaseItems receives stock: each line creates or merges a batch.
func (c *Coordinator) buildPurchaseItems(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	doc *entity.Document,
	reqItems []dto.DocumentItemRequest,
	productsByID map[string]*entity.Product,
	now time.Time,
) ([]entity.DocumentItem, error) {
	var items []entity.DocumentItem
	for i, req := range reqItems {
		product := productsByID[req.ProductID]
		rate := product.GSTRate
		if req.GSTRate != nil {
			rate = *req.GSTRate
		}
		receipt := inventory.BatchReceipt{
			ShopID:        doc.ShopID,
			ProductID:     req.ProductID,
			BatchCode:     req.BatchCode,
			Quantity:      req.Quantity,
			MRP:           req.MRP,
			PurchasePrice: req.PurchasePrice,
			SellingPrice:  req.SellingPrice,
			GSTRate:       rate,
		}
		if req.ExpiryDate != nil {
			receipt.ExpiryDate = *req.ExpiryDate
		}
		if req.MfgDate != nil {
			receipt.MfgDate = *req.MfgDate
		}
		batch, err := c.inventoryUC.CreateOrMergeBatchInTx(batchRepo, productRepo, receipt, now)
		if err != nil {
			return nil, domain.NewItemError(i, "", err)
		}

		b := gst.ItemGST(req.Quantity, req.PurchasePrice, req.DiscountPct, rate, doc.TaxType)
		items = append(items, entity.DocumentItem{
			ID:            uuid.New().String(),
			DocumentID:    doc.ID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			BatchID:       batch.ID,
			BatchCode:     batch.BatchCode,
			Quantity:      req.Quantity,
			UnitPrice:     req.PurchasePrice,
			MRP:           req.MRP,
			PurchasePrice: req.PurchasePrice,
			DiscountPct:   req.DiscountPct,
			GSTRate:       rate,
			TaxableValue:  b.Taxable,
			CGST:          b.CGST,
			SGST:          b.SGST,
			IGST:          b.IGST,
			Total:         b.Total,
		})
	}
	return items, nil
}
