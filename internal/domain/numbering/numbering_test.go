package numbering_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pharmabill/pharmabill-api/internal/domain/numbering"
)

func TestOrgInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Ramesh Medicals", "RA"},
		{"lowercase", "city pharmacy", "CI"},
		{"leading symbols skipped", "  +91 Pharma", "91"},
		{"single usable char falls back", "A", "XX"},
		{"empty falls back", "", "XX"},
		{"symbols only falls back", "@#$%", "XX"},
		{"unicode stripped", "Śri Clinic", "RI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbering.OrgInitials(tt.in))
		})
	}
}

func TestDocumentNumber(t *testing.T) {
	jan := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV-2026-RA-000001",
		numbering.DocumentNumber(numbering.PrefixInvoice, jan, "RA", 1))
	assert.Equal(t, "PUR-2026-RA-000042",
		numbering.DocumentNumber(numbering.PrefixPurchase, jan, "RA", 42))
}

func TestNoteNumber(t *testing.T) {
	mar := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "CN-2026-03-RA-0007",
		numbering.NoteNumber(numbering.PrefixCreditNote, mar, "RA", 7))
	assert.Equal(t, "DN-2026-03-XX-0001",
		numbering.NoteNumber(numbering.PrefixDebitNote, mar, "XX", 1))
}

func TestLegacyInvoiceNumber(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202601-0003", numbering.LegacyInvoiceNumber(jan, 3))
}

func TestPeriodKeys(t *testing.T) {
	dec := time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)
	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025", numbering.YearPeriodKey(dec))
	assert.Equal(t, "2026", numbering.YearPeriodKey(jan))
	assert.Equal(t, "2025-12", numbering.MonthPeriodKey(dec))
	assert.Equal(t, "2026-01", numbering.MonthPeriodKey(jan))
}

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), "2026-27"},
		{time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(1999, time.June, 1, 0, 0, 0, 0, time.UTC), "1999-00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, numbering.FinancialYear(tt.date), tt.date.String())
	}
}

func TestPrefixFor(t *testing.T) {
	assert.Equal(t, "INV", numbering.PrefixFor("INVOICE"))
	assert.Equal(t, "PUR", numbering.PrefixFor("PURCHASE"))
	assert.Equal(t, "CN", numbering.PrefixFor("SALES_RETURN"))
	assert.Equal(t, "DN", numbering.PrefixFor("PURCHASE_RETURN"))
}
