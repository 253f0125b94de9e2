package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/application/inventory"
	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
	"github.com/pharmabill/pharmabill-api/pkg/logger"
)

// Coordinator orchestrates sequence numbering, batch inventory, the
// accounting ledger and counterparty balances into atomic document lifecycle
// operations. Every multi-write operation runs inside one TxRunner
// transaction; validation happens before the first write wherever possible.
type Coordinator struct {
	txRunner    TxRunner
	inventoryUC *inventory.UseCase
	ledgerUC    *ledger.UseCase
	shopRepo    repository.ShopRepository
	partyRepo   repository.PartyRepository
	productRepo repository.ProductRepository
	docRepo     repository.DocumentRepository
	log         *logger.Logger
}

// NewCoordinator builds the coordinator. The injected repositories are
// pool-bound and used for pre-transaction validation reads only.
func NewCoordinator(
	txRunner TxRunner,
	inventoryUC *inventory.UseCase,
	ledgerUC *ledger.UseCase,
	shopRepo repository.ShopRepository,
	partyRepo repository.PartyRepository,
	productRepo repository.ProductRepository,
	docRepo repository.DocumentRepository,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		txRunner:    txRunner,
		inventoryUC: inventoryUC,
		ledgerUC:    ledgerUC,
		shopRepo:    shopRepo,
		partyRepo:   partyRepo,
		productRepo: productRepo,
		docRepo:     docRepo,
		log:         log,
	}
}

// GetDocument returns a document with its items.
func (c *Coordinator) GetDocument(ctx context.Context, shopID, id string) (*dto.DocumentResponse, error) {
	doc, err := c.docRepo.GetByID(id)
	if err != nil || doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.ShopID != shopID {
		return nil, domain.ErrForbidden
	}
	return toResponse(doc, nil), nil
}

// resolveShopAndParty loads and checks the tenant and counterparty for a
// document operation. Invoices bill customers, purchases receive from
// suppliers.
func (c *Coordinator) resolveShopAndParty(shopID, partyID, docType string) (*entity.Shop, *entity.Party, error) {
	shop, err := c.shopRepo.GetByID(shopID)
	if err != nil || shop == nil {
		return nil, nil, domain.ErrNotFound
	}
	party, err := c.partyRepo.GetByID(partyID)
	if err != nil || party == nil {
		return nil, nil, domain.ErrNotFound
	}
	if party.ShopID != shopID {
		return nil, nil, domain.ErrForbidden
	}
	wantType := entity.PartyTypeCustomer
	if docType == entity.DocTypePurchase || docType == entity.DocTypePurchaseReturn {
		wantType = entity.PartyTypeSupplier
	}
	if party.Type != wantType {
		return nil, nil, domain.ErrInvalidInput
	}
	return shop, party, nil
}

// resolveTaxType picks INTRA unless the request pins one or the party sits in
// a different GST state than the shop.
func resolveTaxType(requested string, shop *entity.Shop, party *entity.Party) string {
	if requested != "" {
		return requested
	}
	if shop.State != "" && party.State != "" && shop.State != party.State {
		return gst.TaxTypeInter
	}
	return gst.TaxTypeIntra
}

func paymentStatus(mode string) string {
	if mode == entity.PaymentModeCredit {
		return entity.PaymentStatusUnpaid
	}
	return entity.PaymentStatusPaid
}

// creditAmount is the portion of a document that sits on the counterparty
// balance: the grand total for credit documents, zero otherwise.
func creditAmount(doc *entity.Document) decimal.Decimal {
	if doc.PaymentMode == entity.PaymentModeCredit {
		return doc.GrandTotal
	}
	return decimal.Zero
}

// applyTotals copies document-level totals onto the entity.
func applyTotals(doc *entity.Document, totals gst.Totals, otherCharges, discount decimal.Decimal) {
	doc.Subtotal = totals.Subtotal
	doc.CGST = totals.CGST
	doc.SGST = totals.SGST
	doc.IGST = totals.IGST
	doc.OtherCharges = otherCharges
	doc.Discount = discount
	doc.RoundOff = totals.RoundOff
	doc.GrandTotal = totals.GrandTotal
}

func breakups(items []entity.DocumentItem) []gst.Breakup {
	lines := make([]gst.Breakup, 0, len(items))
	for _, it := range items {
		lines = append(lines, gst.Breakup{
			Taxable: it.TaxableValue,
			CGST:    it.CGST,
			SGST:    it.SGST,
			IGST:    it.IGST,
			Total:   it.Total,
		})
	}
	return lines
}

// postDocumentEntries builds the recipe for a document and posts it,
// recording the posted entry ids on the document.
func (c *Coordinator) postDocumentEntries(
	ledgerRepo repository.LedgerRepository,
	doc *entity.Document,
	party *entity.Party,
	totalCost decimal.Decimal,
	userID string,
	now time.Time,
) error {
	posting := ledger.Posting{
		Date:        doc.Date,
		PaymentMode: doc.PaymentMode,
		Party:       party,
		Totals: gst.Totals{
			Subtotal:   doc.Subtotal,
			CGST:       doc.CGST,
			SGST:       doc.SGST,
			IGST:       doc.IGST,
			RoundOff:   doc.RoundOff,
			GrandTotal: doc.GrandTotal,
		},
		TotalCost: totalCost,
		Narration: doc.Number,
	}

	var entries []*entity.LedgerEntry
	switch doc.Type {
	case entity.DocTypeInvoice:
		entries = ledger.SaleEntries(posting)
	case entity.DocTypePurchase:
		entries = ledger.PurchaseEntries(posting)
	case entity.DocTypeSalesReturn:
		entries = ledger.SalesReturnEntries(posting)
	case entity.DocTypePurchaseReturn:
		entries = ledger.PurchaseReturnEntries(posting)
	default:
		return domain.ErrInvalidInput
	}

	ids, err := c.ledgerUC.PostDoubleEntryInTx(ledgerRepo, doc.ShopID, entries,
		ledger.Reference{Type: doc.Type, ID: doc.ID, Number: doc.Number}, userID, now)
	if err != nil {
		return err
	}
	doc.LedgerEntryIDs = ids
	return nil
}

func toResponse(doc *entity.Document, warnings []string) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:            doc.ID,
		Type:          doc.Type,
		Number:        doc.Number,
		PartyID:       doc.PartyID,
		Date:          doc.Date.Format("2006-01-02"),
		Subtotal:      doc.Subtotal,
		CGST:          doc.CGST,
		SGST:          doc.SGST,
		IGST:          doc.IGST,
		OtherCharges:  doc.OtherCharges,
		Discount:      doc.Discount,
		RoundOff:      doc.RoundOff,
		GrandTotal:    doc.GrandTotal,
		PaymentMode:   doc.PaymentMode,
		PaymentStatus: doc.PaymentStatus,
		OriginalDocID: doc.OriginalDocID,
		ReturnReason:  doc.ReturnReason,
		Warnings:      warnings,
		Items:         make([]dto.DocumentItemResponse, 0, len(doc.Items)),
	}
	for _, it := range doc.Items {
		resp.Items = append(resp.Items, dto.DocumentItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			ProductName:      it.ProductName,
			BatchID:          it.BatchID,
			BatchCode:        it.BatchCode,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			DiscountPct:      it.DiscountPct,
			GSTRate:          it.GSTRate,
			TaxableValue:     it.TaxableValue,
			CGST:             it.CGST,
			SGST:             it.SGST,
			IGST:             it.IGST,
			Total:            it.Total,
			ReturnedQuantity: it.ReturnedQuantity,
		})
	}
	return resp
}
