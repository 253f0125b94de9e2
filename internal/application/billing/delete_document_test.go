package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

func TestDeleteInvoiceRestoresStockAndLedger(t *testing.T) {
	env := newTestEnv()
	env.addParty("cust-1", entity.PartyTypeCustomer)
	env.addProduct("prod-1", decimal.NewFromInt(5), dec("100"))
	env.addBatch("b1", "prod-1", 10, time.Now().AddDate(0, 6, 0), dec("100"), dec("60"))

	created := seedInvoice(t, env, entity.PaymentModeCredit, []dto.DocumentItemRequest{
		{ProductID: "prod-1", BatchID: "b1", Quantity: 4},
	})

	warnings, err := env.coordinator.DeleteDocument(context.Background(), "shop-1", entity.DocTypeInvoice, created.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	b1, _ := env.batches.GetByID("b1")
	assert.Equal(t, int64(10), b1.Quantity)
	p, _ := env.products.GetByID("prod-1")
	assert.Equal(t, int64(10), p.StockQuantity)

	cust, _ := env.parties.GetByID("cust-1")
	assert.True(t, cust.Balance.IsZero(), "balance %s", cust.Balance)

	assert.Empty(t, env.ledger.byReference(entity.DocTypeInvoice, created.ID))
	stored, _ := env.docs.GetByID(created.ID)
	assert.Nil(t, stored)
}

func TestDeletePurchaseDeductsReceivedStock(t *testing.T) {
	env := newTestEnv()
	env.addParty("supp-1", entity.PartyTypeSupplier)
	env.addProduct("prod-1", decimal.NewFromInt(5), dec("100"))

	expiry := time.Now().AddDate(1, 0, 0)
	created, err := env.coordinator.CreateDocument(context.Background(), "shop-1", "user-1", entity.DocTypePurchase, dto.CreateDocumentRequest{
		PartyID:     "supp-1",
		PaymentMode: entity.PaymentModeCash,
		Items: []dto.DocumentItemRequest{
			{ProductID: "prod-1", Quantity: 30, BatchCode: "LOT-1", ExpiryDate: &expiry, PurchasePrice: dec("60"), SellingPrice: dec("90"), MRP: dec("110")},
		},
	})
	require.NoError(t, err)
	batchID := created.Items[0].BatchID

	// Part of the received stock is sold before the purchase is deleted.
	env.addParty("cust-1", entity.PartyTypeCustomer)
	seedInvoice(t, env, entity.PaymentModeCash, []dto.DocumentItemRequest{
		{ProductID: "prod-1", BatchID: batchID, Quantity: 25},
	})

	warnings, err := env.coordinator.DeleteDocument(context.Background(), "shop-1", entity.DocTypePurchase, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)

	b, _ := env.batches.GetByID(batchID)
	assert.Equal(t, int64(-25), b.Quantity)
}

func TestDeleteDocumentRejectedWhenReturned(t *testing.T) {
	env := newTestEnv()
	env.addParty("cust-1", entity.PartyTypeCustomer)
	env.addProduct("prod-1", decimal.NewFromInt(5), dec("100"))
	env.addBatch("b1", "prod-1", 10, time.Now().AddDate(0, 6, 0), dec("100"), dec("60"))

	created := seedInvoice(t, env, entity.PaymentModeCash, []dto.DocumentItemRequest{
		{ProductID: "prod-1", BatchID: "b1", Quantity: 4},
	})
	_, err := env.coordinator.CreateReturn(context.Background(), "shop-1", "user-1", created.ID, dto.CreateReturnRequest{
		Items:  []dto.ReturnItemRequest{{ItemID: created.Items[0].ID, Quantity: 2}},
		Reason: entity.ReturnReasonUnwanted,
	})
	require.NoError(t, err)

	_, err = env.coordinator.DeleteDocument(context.Background(), "shop-1", entity.DocTypeInvoice, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The document and its ledger set are untouched.
	stored, _ := env.docs.GetByID(created.ID)
	require.NotNil(t, stored)
	assert.NotEmpty(t, env.ledger.byReference(entity.DocTypeInvoice, created.ID))
}

func TestDeleteDocumentWrongShop(t *testing.T) {
	env := newTestEnv()
	env.addParty("cust-1", entity.PartyTypeCustomer)
	env.addProduct("prod-1", decimal.NewFromInt(5), dec("100"))
	env.addBatch("b1", "prod-1", 10, time.Now().AddDate(0, 6, 0), dec("100"), dec("60"))

	created := seedInvoice(t, env, entity.PaymentModeCash, []dto.DocumentItemRequest{
		{ProductID: "prod-1", BatchID: "b1", Quantity: 4},
	})

	_, err := env.coordinator.DeleteDocument(context.Background(), "shop-2", entity.DocTypeInvoice, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
