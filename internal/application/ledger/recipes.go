package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/pkg/gst"
)

// Posting describes one business event for the fixed posting recipes. Totals
// comes from the tax utility; TotalCost is the purchase cost of the goods that
// moved (zero when cost data is absent, which skips the COGS pair).
type Posting struct {
	Date        time.Time
	PaymentMode string // CASH, BANK or CREDIT
	Party       *entity.Party
	Totals      gst.Totals
	TotalCost   decimal.Decimal
	Narration   string
}

// settlementAccount resolves where the money side of a posting lands: the
// cash/bank account for paid documents, the counterparty control account for
// credit ones.
func settlementAccount(mode string, party *entity.Party) entity.Account {
	switch mode {
	case entity.PaymentModeCash:
		return entity.AccountCash
	case entity.PaymentModeBank:
		return entity.AccountBank
	}
	if party != nil && party.Type == entity.PartyTypeSupplier {
		return entity.AccountAccountsPayable
	}
	return entity.AccountAccountsReceivable
}

func entry(p Posting, account entity.Account, side string, amount decimal.Decimal) *entity.LedgerEntry {
	e := &entity.LedgerEntry{
		Date:      p.Date,
		Account:   account,
		Type:      side,
		Amount:    amount,
		Narration: p.Narration,
	}
	if p.Party != nil {
		e.PartyType = p.Party.Type
		e.PartyID = p.Party.ID
	}
	return e
}

// taxEntries appends one entry per non-zero GST component.
func taxEntries(p Posting, entries []*entity.LedgerEntry, side string, cgst, sgst, igst entity.Account) []*entity.LedgerEntry {
	if p.Totals.CGST.IsPositive() {
		entries = append(entries, entry(p, cgst, side, p.Totals.CGST))
	}
	if p.Totals.SGST.IsPositive() {
		entries = append(entries, entry(p, sgst, side, p.Totals.SGST))
	}
	if p.Totals.IGST.IsPositive() {
		entries = append(entries, entry(p, igst, side, p.Totals.IGST))
	}
	return entries
}

// revenueAmount is the non-tax portion of the grand total (subtotal plus
// charges, discount and round-off folded in), so every recipe balances to the
// paisa without separate charge accounts.
func revenueAmount(t gst.Totals) decimal.Decimal {
	return t.GrandTotal.Sub(t.CGST).Sub(t.SGST).Sub(t.IGST)
}

// SaleEntries: debit Cash/Bank or Accounts-Receivable for the grand total,
// credit Sales and the GST-payable accounts; when cost data is present,
// additionally debit COGS and credit Inventory.
func SaleEntries(p Posting) []*entity.LedgerEntry {
	entries := []*entity.LedgerEntry{
		entry(p, settlementAccount(p.PaymentMode, p.Party), entity.EntryDebit, p.Totals.GrandTotal),
		entry(p, entity.AccountSales, entity.EntryCredit, revenueAmount(p.Totals)),
	}
	entries = taxEntries(p, entries, entity.EntryCredit,
		entity.AccountGSTPayableCGST, entity.AccountGSTPayableSGST, entity.AccountGSTPayableIGST)
	if p.TotalCost.IsPositive() {
		entries = append(entries,
			entry(p, entity.AccountCOGS, entity.EntryDebit, p.TotalCost),
			entry(p, entity.AccountInventory, entity.EntryCredit, p.TotalCost),
		)
	}
	return entries
}

// PurchaseEntries: debit Purchases and the GST-input accounts, credit
// Cash/Bank or Accounts-Payable for the grand total.
func PurchaseEntries(p Posting) []*entity.LedgerEntry {
	entries := []*entity.LedgerEntry{
		entry(p, entity.AccountPurchases, entity.EntryDebit, revenueAmount(p.Totals)),
	}
	entries = taxEntries(p, entries, entity.EntryDebit,
		entity.AccountGSTInputCGST, entity.AccountGSTInputSGST, entity.AccountGSTInputIGST)
	entries = append(entries,
		entry(p, settlementAccount(p.PaymentMode, p.Party), entity.EntryCredit, p.Totals.GrandTotal))
	return entries
}

// SalesReturnEntries reverse a sale: debit Sales-Return and the GST-payable
// accounts, credit the settlement account (cash refund, or the customer's
// receivable for credit sales).
func SalesReturnEntries(p Posting) []*entity.LedgerEntry {
	entries := []*entity.LedgerEntry{
		entry(p, entity.AccountSalesReturn, entity.EntryDebit, revenueAmount(p.Totals)),
	}
	entries = taxEntries(p, entries, entity.EntryDebit,
		entity.AccountGSTPayableCGST, entity.AccountGSTPayableSGST, entity.AccountGSTPayableIGST)
	entries = append(entries,
		entry(p, settlementAccount(p.PaymentMode, p.Party), entity.EntryCredit, p.Totals.GrandTotal))
	return entries
}

// PurchaseReturnEntries reverse a purchase: debit the settlement account,
// credit Purchase-Return and the GST-input accounts.
func PurchaseReturnEntries(p Posting) []*entity.LedgerEntry {
	entries := []*entity.LedgerEntry{
		entry(p, settlementAccount(p.PaymentMode, p.Party), entity.EntryDebit, p.Totals.GrandTotal),
		entry(p, entity.AccountPurchaseReturn, entity.EntryCredit, revenueAmount(p.Totals)),
	}
	entries = taxEntries(p, entries, entity.EntryCredit,
		entity.AccountGSTInputCGST, entity.AccountGSTInputSGST, entity.AccountGSTInputIGST)
	return entries
}

// PaymentEntries settle a counterparty balance. A customer receipt debits
// Cash/Bank and credits Accounts-Receivable; a supplier payment debits
// Accounts-Payable and credits Cash/Bank.
func PaymentEntries(p Posting, amount decimal.Decimal) []*entity.LedgerEntry {
	money := entity.AccountCash
	if p.PaymentMode == entity.PaymentModeBank {
		money = entity.AccountBank
	}
	if p.Party != nil && p.Party.Type == entity.PartyTypeSupplier {
		return []*entity.LedgerEntry{
			entry(p, entity.AccountAccountsPayable, entity.EntryDebit, amount),
			entry(p, money, entity.EntryCredit, amount),
		}
	}
	return []*entity.LedgerEntry{
		entry(p, money, entity.EntryDebit, amount),
		entry(p, entity.AccountAccountsReceivable, entity.EntryCredit, amount),
	}
}

// ExpenseEntries: debit the expense-category account, credit Cash/Bank.
func ExpenseEntries(p Posting, category entity.Account, amount decimal.Decimal) []*entity.LedgerEntry {
	money := entity.AccountCash
	if p.PaymentMode == entity.PaymentModeBank {
		money = entity.AccountBank
	}
	return []*entity.LedgerEntry{
		entry(p, category, entity.EntryDebit, amount),
		entry(p, money, entity.EntryCredit, amount),
	}
}
