package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/numbering"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
)

// Reference ties a posted entry set to the document (or payment/expense) that
// produced it.
type Reference struct {
	Type   string
	ID     string
	Number string
}

// UseCase exposes double-entry posting and the ledger read side.
type UseCase struct {
	ledgerRepo repository.LedgerRepository
}

// NewUseCase builds the use case with a pool-bound repository for reads.
// Writes go through PostDoubleEntryInTx with the caller's tx-bound repository.
func NewUseCase(ledgerRepo repository.LedgerRepository) *UseCase {
	return &UseCase{ledgerRepo: ledgerRepo}
}

// PostDoubleEntryInTx validates and persists one entry set as a single batch
// using the caller's transaction-bound repository. The set is rejected with
// ErrUnbalancedEntries when Σdebit != Σcredit and nothing is persisted in that
// case. Returns the ids of the posted entries.
func (uc *UseCase) PostDoubleEntryInTx(
	ledgerRepo repository.LedgerRepository,
	shopID string,
	entries []*entity.LedgerEntry,
	ref Reference,
	createdBy string,
	now time.Time,
) ([]string, error) {
	if len(entries) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var debit, credit decimal.Decimal
	for _, e := range entries {
		if !e.Account.Valid() {
			return nil, domain.ErrInvalidInput
		}
		if e.Amount.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		switch e.Type {
		case entity.EntryDebit:
			debit = debit.Add(e.Amount)
		case entity.EntryCredit:
			credit = credit.Add(e.Amount)
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if !debit.Equal(credit) {
		return nil, domain.ErrUnbalancedEntries
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		e.ID = uuid.New().String()
		e.ShopID = shopID
		e.ReferenceType = ref.Type
		e.ReferenceID = ref.ID
		e.ReferenceNumber = ref.Number
		if e.Date.IsZero() {
			e.Date = now
		}
		e.FinancialYear = numbering.FinancialYear(e.Date)
		e.CreatedAt = now
		e.CreatedBy = createdBy
		ids = append(ids, e.ID)
	}
	if err := ledgerRepo.CreateBatch(entries); err != nil {
		return nil, err
	}
	return ids, nil
}

// AccountBalance returns Σdebit − Σcredit for an account up to asOf.
func (uc *UseCase) AccountBalance(ctx context.Context, shopID string, account entity.Account, asOf time.Time) (decimal.Decimal, error) {
	if !account.Valid() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return uc.ledgerRepo.Balance(shopID, account, asOf)
}

// PartyLedgerLine is one chronological entry with the running balance after it.
type PartyLedgerLine struct {
	Entry          *entity.LedgerEntry
	RunningBalance decimal.Decimal
}

// PartyLedger returns a counterparty's entries in chronological order with a
// running balance. For customers the balance grows with debits (receivable);
// for suppliers with credits (payable).
func (uc *UseCase) PartyLedger(ctx context.Context, shopID, partyType, partyID string, from, to time.Time) ([]PartyLedgerLine, error) {
	if partyType != entity.PartyTypeCustomer && partyType != entity.PartyTypeSupplier {
		return nil, domain.ErrInvalidInput
	}
	entries, err := uc.ledgerRepo.ListByParty(shopID, partyType, partyID, from, to)
	if err != nil {
		return nil, err
	}

	lines := make([]PartyLedgerLine, 0, len(entries))
	var running decimal.Decimal
	for _, e := range entries {
		signed := e.Amount
		if partyType == entity.PartyTypeCustomer {
			if e.Type == entity.EntryCredit {
				signed = signed.Neg()
			}
		} else {
			if e.Type == entity.EntryDebit {
				signed = signed.Neg()
			}
		}
		running = running.Add(signed)
		lines = append(lines, PartyLedgerLine{Entry: e, RunningBalance: running})
	}
	return lines, nil
}
