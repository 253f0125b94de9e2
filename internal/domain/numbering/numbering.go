// Package numbering formats human-readable document numbers and the fiscal
// buckets they are minted in. Everything here is pure; the sequence itself
// comes from the atomic counter at the storage layer.
package numbering

import (
	"fmt"
	"strings"
	"time"
)

// Prefixes per document type.
const (
	PrefixInvoice    = "INV"
	PrefixPurchase   = "PUR"
	PrefixCreditNote = "CN" // sales return
	PrefixDebitNote  = "DN" // purchase return
)

// OrgInitials derives the tenant initials embedded in document numbers:
// uppercase, alphanumeric-only, first two characters of the shop name.
// Falls back to "XX" when the name yields nothing.
func OrgInitials(shopName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(shopName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 2 {
				break
			}
		}
	}
	if b.Len() < 2 {
		return "XX"
	}
	return b.String()
}

// DocumentNumber formats an invoice or purchase number:
// {prefix}-{year}-{initials}-{seq:6}.
func DocumentNumber(prefix string, t time.Time, initials string, seq int64) string {
	return fmt.Sprintf("%s-%d-%s-%06d", prefix, t.Year(), initials, seq)
}

// NoteNumber formats a credit or debit note number:
// {prefix}-{year}-{month}-{initials}-{seq:4}.
func NoteNumber(prefix string, t time.Time, initials string, seq int64) string {
	return fmt.Sprintf("%s-%d-%02d-%s-%04d", prefix, t.Year(), int(t.Month()), initials, seq)
}

// LegacyInvoiceNumber formats the superseded monthly invoice number:
// INV-{year}{month}-{seq:4}. Kept only so old documents keep parsing;
// new numbers are never minted in this format.
func LegacyInvoiceNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%d%02d-%04d", PrefixInvoice, t.Year(), int(t.Month()), seq)
}

// YearPeriodKey is the counter period for invoices and purchases (yearly).
func YearPeriodKey(t time.Time) string {
	return fmt.Sprintf("%d", t.Year())
}

// MonthPeriodKey is the counter period for credit and debit notes (monthly).
func MonthPeriodKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

// FinancialYear buckets a date into the Indian fiscal year (April–March),
// formatted "2025-26".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// PrefixFor maps a document type to its number prefix.
func PrefixFor(docType string) string {
	switch docType {
	case "PURCHASE":
		return PrefixPurchase
	case "SALES_RETURN":
		return PrefixCreditNote
	case "PURCHASE_RETURN":
		return PrefixDebitNote
	default:
		return PrefixInvoice
	}
}
