package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

func TestRecordPaymentClearsReceivable(t *testing.T) {
	env := newTestEnv()
	env.addParty("cust-1", entity.PartyTypeCustomer)
	env.parties.parties["cust-1"].Balance = dec("500")

	id, err := env.coordinator.RecordPayment(context.Background(), "shop-1", "user-1", dto.RecordPaymentRequest{
		PartyID:     "cust-1",
		Amount:      dec("300"),
		PaymentMode: entity.PaymentModeCash,
		Narration:   "part payment",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cust, _ := env.parties.GetByID("cust-1")
	assert.True(t, cust.Balance.Equal(dec("200")), "balance %s", cust.Balance)

	entries := env.ledger.byReference("PAYMENT", id)
	require.Len(t, entries, 2)

	// Customer payment: cash in, receivable cleared.
	cash, _ := env.ledger.Balance("shop-1", entity.AccountCash, time.Now().Add(time.Hour))
	assert.True(t, cash.Equal(dec("300")))
	ar, _ := env.ledger.Balance("shop-1", entity.AccountAccountsReceivable, time.Now().Add(time.Hour))
	assert.True(t, ar.Equal(dec("-300")))
}

func TestRecordPaymentValidation(t *testing.T) {
	env := newTestEnv()
	env.addParty("cust-1", entity.PartyTypeCustomer)

	_, err := env.coordinator.RecordPayment(context.Background(), "shop-1", "user-1", dto.RecordPaymentRequest{
		PartyID: "cust-1", Amount: dec("-5"), PaymentMode: entity.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.coordinator.RecordPayment(context.Background(), "shop-1", "user-1", dto.RecordPaymentRequest{
		PartyID: "cust-1", Amount: dec("10"), PaymentMode: entity.PaymentModeCredit,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.coordinator.RecordPayment(context.Background(), "shop-1", "user-1", dto.RecordPaymentRequest{
		PartyID: "ghost", Amount: dec("10"), PaymentMode: entity.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordExpensePostsCategory(t *testing.T) {
	env := newTestEnv()

	id, err := env.coordinator.RecordExpense(context.Background(), "shop-1", "user-1", dto.RecordExpenseRequest{
		Category:    string(entity.AccountRent),
		Amount:      dec("12000"),
		PaymentMode: entity.PaymentModeBank,
		Narration:   "august rent",
	})
	require.NoError(t, err)

	entries := env.ledger.byReference("EXPENSE", id)
	require.Len(t, entries, 2)

	rent, _ := env.ledger.Balance("shop-1", entity.AccountRent, time.Now().Add(time.Hour))
	assert.True(t, rent.Equal(dec("12000")))
	bank, _ := env.ledger.Balance("shop-1", entity.AccountBank, time.Now().Add(time.Hour))
	assert.True(t, bank.Equal(dec("-12000")))
}

func TestRecordExpenseRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv()

	_, err := env.coordinator.RecordExpense(context.Background(), "shop-1", "user-1", dto.RecordExpenseRequest{
		Category:    "BRIBES",
		Amount:      dec("100"),
		PaymentMode: entity.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.coordinator.RecordExpense(context.Background(), "shop-1", "user-1", dto.RecordExpenseRequest{
		Category:    string(entity.AccountSales), // real account, not an expense
		Amount:      dec("100"),
		PaymentMode: entity.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
