package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one of the closed set of ledger accounts the posting recipes use.
type Account string

const (
	AccountCash               Account = "CASH"
	AccountBank               Account = "BANK"
	AccountAccountsReceivable Account = "ACCOUNTS_RECEIVABLE"
	AccountInventory          Account = "INVENTORY"
	AccountAccountsPayable    Account = "ACCOUNTS_PAYABLE"
	AccountGSTPayableCGST     Account = "GST_PAYABLE_CGST"
	AccountGSTPayableSGST     Account = "GST_PAYABLE_SGST"
	AccountGSTPayableIGST     Account = "GST_PAYABLE_IGST"
	AccountGSTInputCGST       Account = "GST_INPUT_CGST"
	AccountGSTInputSGST       Account = "GST_INPUT_SGST"
	AccountGSTInputIGST       Account = "GST_INPUT_IGST"
	AccountSales              Account = "SALES"
	AccountPurchases          Account = "PURCHASES"
	AccountCOGS               Account = "COST_OF_GOODS_SOLD"
	AccountSalesReturn        Account = "SALES_RETURN"
	AccountPurchaseReturn     Account = "PURCHASE_RETURN"

	// Expense-category accounts.
	AccountRent        Account = "RENT"
	AccountSalaries    Account = "SALARIES"
	AccountUtilities   Account = "UTILITIES"
	AccountTransport   Account = "TRANSPORT"
	AccountMarketing   Account = "MARKETING"
	AccountMiscExpense Account = "MISC_EXPENSE"
)

// ExpenseAccounts is the fixed list of expense categories RecordExpense accepts.
var ExpenseAccounts = []Account{
	AccountRent, AccountSalaries, AccountUtilities,
	AccountTransport, AccountMarketing, AccountMiscExpense,
}

// Valid reports whether a is part of the closed account set.
func (a Account) Valid() bool {
	switch a {
	case AccountCash, AccountBank, AccountAccountsReceivable, AccountInventory,
		AccountAccountsPayable, AccountGSTPayableCGST, AccountGSTPayableSGST,
		AccountGSTPayableIGST, AccountGSTInputCGST, AccountGSTInputSGST,
		AccountGSTInputIGST, AccountSales, AccountPurchases, AccountCOGS,
		AccountSalesReturn, AccountPurchaseReturn,
		AccountRent, AccountSalaries, AccountUtilities, AccountTransport,
		AccountMarketing, AccountMiscExpense:
		return true
	}
	return false
}

// Entry sides.
const (
	EntryDebit  = "DEBIT"
	EntryCredit = "CREDIT"
)

// LedgerEntry is one side of a double-entry posting. Entries are immutable
// once posted; a document edit deletes the old set and posts a new one inside
// the same transaction.
type LedgerEntry struct {
	ID              string
	ShopID          string
	Date            time.Time
	Account         Account
	Type            string // EntryDebit | EntryCredit
	Amount          decimal.Decimal
	ReferenceType   string // document type, PAYMENT or EXPENSE
	ReferenceID     string
	ReferenceNumber string
	PartyType       string
	PartyID         string
	Narration       string
	FinancialYear   string // April–March bucket, e.g. "2025-26"
	CreatedAt       time.Time
	CreatedBy       string
}
