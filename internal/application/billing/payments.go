package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// RecordPayment settles an amount against a counterparty's outstanding
// balance and posts the matching ledger pair. A customer payment clears
// receivables, a supplier payment clears payables.
func (c *Coordinator) RecordPayment(ctx context.Context, shopID, userID string, in dto.RecordPaymentRequest) (string, error) {
	if !in.Amount.IsPositive() {
		return "", domain.ErrInvalidInput
	}
	if in.PaymentMode != entity.PaymentModeCash && in.PaymentMode != entity.PaymentModeBank {
		return "", domain.ErrInvalidInput
	}

	party, err := c.partyRepo.GetByID(in.PartyID)
	if err != nil || party == nil {
		return "", domain.ErrNotFound
	}
	if party.ShopID != shopID {
		return "", domain.ErrForbidden
	}

	now := time.Now()
	paymentID := uuid.New().String()

	err = c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		if err := partyRepo.AdjustBalance(party.ID, in.Amount.Neg()); err != nil {
			return err
		}

		entries := ledger.PaymentEntries(ledger.Posting{
			Date:        now,
			PaymentMode: in.PaymentMode,
			Party:       party,
			Narration:   in.Narration,
		}, in.Amount)
		_, err := c.ledgerUC.PostDoubleEntryInTx(ledgerRepo, shopID, entries,
			ledger.Reference{Type: "PAYMENT", ID: paymentID, Number: in.Narration}, userID, now)
		return err
	})
	if err != nil {
		return "", err
	}

	c.log.Info().
		Str("shop_id", shopID).
		Str("party_id", party.ID).
		Str("amount", in.Amount.String()).
		Msg("payment recorded")
	return paymentID, nil
}

// RecordExpense posts a categorized operating expense paid in cash or bank.
func (c *Coordinator) RecordExpense(ctx context.Context, shopID, userID string, in dto.RecordExpenseRequest) (string, error) {
	if !in.Amount.IsPositive() {
		return "", domain.ErrInvalidInput
	}
	if in.PaymentMode != entity.PaymentModeCash && in.PaymentMode != entity.PaymentModeBank {
		return "", domain.ErrInvalidInput
	}
	category := entity.Account(in.Category)
	if !expenseAccount(category) {
		return "", domain.ErrInvalidInput
	}

	now := time.Now()
	expenseID := uuid.New().String()

	err := c.txRunner.RunBilling(ctx, func(
		counterRepo repository.CounterRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
		partyRepo repository.PartyRepository,
		docRepo repository.DocumentRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		entries := ledger.ExpenseEntries(ledger.Posting{
			Date:        now,
			PaymentMode: in.PaymentMode,
			Narration:   in.Narration,
		}, category, in.Amount)
		_, err := c.ledgerUC.PostDoubleEntryInTx(ledgerRepo, shopID, entries,
			ledger.Reference{Type: "EXPENSE", ID: expenseID, Number: in.Narration}, userID, now)
		return err
	})
	if err != nil {
		return "", err
	}

	c.log.Info().
		Str("shop_id", shopID).
		Str("category", in.Category).
		Str("amount", in.Amount.String()).
		Msg("expense recorded")
	return expenseID, nil
}

func expenseAccount(a entity.Account) bool {
	for _, e := range entity.ExpenseAccounts {
		if e == a {
			return true
		}
	}
	return false
}
