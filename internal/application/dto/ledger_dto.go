package dto

import "github.com/shopspring/decimal"

// AccountBalanceResponse is the read side of a ledger account.
type AccountBalanceResponse struct {
	Account string          `json:"account"`
	AsOf    string          `json:"as_of"`
	Balance decimal.Decimal `json:"balance"`
}

// PartyLedgerLineResponse is one chronological ledger line with the running
// balance after it.
type PartyLedgerLineResponse struct {
	Date            string          `json:"date"`
	Account         string          `json:"account"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceNumber string          `json:"reference_number"`
	Narration       string          `json:"narration,omitempty"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
}
