package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
)

func sums(entries []*entity.LedgerEntry) (debit, credit decimal.Decimal) {
	for _, e := range entries {
		if e.Type == entity.EntryDebit {
			debit = debit.Add(e.Amount)
		} else {
			credit = credit.Add(e.Amount)
		}
	}
	return
}

func findAccount(t *testing.T, entries []*entity.LedgerEntry, account entity.Account) *entity.LedgerEntry {
	t.Helper()
	for _, e := range entries {
		if e.Account == account {
			return e
		}
	}
	t.Fatalf("no entry for account %s", account)
	return nil
}

func intraTotals() gst.Totals {
	lines := []gst.Breakup{gst.ItemGST(10, dec("50"), decimal.Zero, dec("12"), gst.TaxTypeIntra)}
	return gst.DocumentTotals(lines, decimal.Zero, decimal.Zero) // 500 + 30 + 30 = 560
}

func TestSaleEntries_CashWithCost(t *testing.T) {
	p := ledger.Posting{
		Date:        time.Now(),
		PaymentMode: entity.PaymentModeCash,
		Party:       &entity.Party{ID: "cust-1", Type: entity.PartyTypeCustomer},
		Totals:      intraTotals(),
		TotalCost:   dec("320"),
	}
	entries := ledger.SaleEntries(p)

	debit, credit := sums(entries)
	assert.True(t, debit.Equal(credit), "debit %s credit %s", debit, credit)

	assert.True(t, findAccount(t, entries, entity.AccountCash).Amount.Equal(dec("560")))
	assert.True(t, findAccount(t, entries, entity.AccountSales).Amount.Equal(dec("500")))
	assert.True(t, findAccount(t, entries, entity.AccountGSTPayableCGST).Amount.Equal(dec("30")))
	assert.True(t, findAccount(t, entries, entity.AccountCOGS).Amount.Equal(dec("320")))
	assert.True(t, findAccount(t, entries, entity.AccountInventory).Amount.Equal(dec("320")))
}

func TestSaleEntries_CreditGoesToReceivable(t *testing.T) {
	p := ledger.Posting{
		PaymentMode: entity.PaymentModeCredit,
		Party:       &entity.Party{ID: "cust-1", Type: entity.PartyTypeCustomer},
		Totals:      intraTotals(),
	}
	entries := ledger.SaleEntries(p)

	ar := findAccount(t, entries, entity.AccountAccountsReceivable)
	assert.Equal(t, entity.EntryDebit, ar.Type)
	assert.True(t, ar.Amount.Equal(dec("560")))
	assert.Equal(t, "cust-1", ar.PartyID)
}

func TestPurchaseEntries_CreditGoesToPayable(t *testing.T) {
	p := ledger.Posting{
		PaymentMode: entity.PaymentModeCredit,
		Party:       &entity.Party{ID: "sup-1", Type: entity.PartyTypeSupplier},
		Totals:      intraTotals(),
	}
	entries := ledger.PurchaseEntries(p)

	debit, credit := sums(entries)
	assert.True(t, debit.Equal(credit))

	ap := findAccount(t, entries, entity.AccountAccountsPayable)
	assert.Equal(t, entity.EntryCredit, ap.Type)
	assert.True(t, ap.Amount.Equal(dec("560")))
	assert.Equal(t, entity.EntryDebit, findAccount(t, entries, entity.AccountGSTInputCGST).Type)
}

func TestReturnEntriesBalance(t *testing.T) {
	p := ledger.Posting{
		PaymentMode: entity.PaymentModeCredit,
		Party:       &entity.Party{ID: "p1", Type: entity.PartyTypeCustomer},
		Totals:      intraTotals(),
	}
	d1, c1 := sums(ledger.SalesReturnEntries(p))
	assert.True(t, d1.Equal(c1))

	p.Party = &entity.Party{ID: "s1", Type: entity.PartyTypeSupplier}
	d2, c2 := sums(ledger.PurchaseReturnEntries(p))
	assert.True(t, d2.Equal(c2))

	sr := ledger.SalesReturnEntries(p)
	assert.Equal(t, entity.EntryDebit, findAccount(t, sr, entity.AccountSalesReturn).Type)
	assert.Equal(t, entity.EntryDebit, findAccount(t, sr, entity.AccountGSTPayableCGST).Type)
}

func TestPaymentEntries_Directions(t *testing.T) {
	receipt := ledger.PaymentEntries(ledger.Posting{
		PaymentMode: entity.PaymentModeBank,
		Party:       &entity.Party{ID: "cust-1", Type: entity.PartyTypeCustomer},
	}, dec("400"))
	require.Len(t, receipt, 2)
	assert.Equal(t, entity.EntryDebit, findAccount(t, receipt, entity.AccountBank).Type)
	assert.Equal(t, entity.EntryCredit, findAccount(t, receipt, entity.AccountAccountsReceivable).Type)

	payment := ledger.PaymentEntries(ledger.Posting{
		PaymentMode: entity.PaymentModeCash,
		Party:       &entity.Party{ID: "sup-1", Type: entity.PartyTypeSupplier},
	}, dec("250"))
	assert.Equal(t, entity.EntryDebit, findAccount(t, payment, entity.AccountAccountsPayable).Type)
	assert.Equal(t, entity.EntryCredit, findAccount(t, payment, entity.AccountCash).Type)
}

func TestExpenseEntries(t *testing.T) {
	entries := ledger.ExpenseEntries(ledger.Posting{PaymentMode: entity.PaymentModeCash},
		entity.AccountRent, dec("1500"))
	require.Len(t, entries, 2)
	assert.Equal(t, entity.EntryDebit, findAccount(t, entries, entity.AccountRent).Type)
	assert.Equal(t, entity.EntryCredit, findAccount(t, entries, entity.AccountCash).Type)

	d, c := sums(entries)
	assert.True(t, d.Equal(c))
}
