// Package gst implements the GST arithmetic used by the billing coordinator.
// Everything here is pure and side-effect free.
package gst

import "github.com/shopspring/decimal"

// Tax types. Intra-state splits the tax into CGST+SGST, inter-state is IGST.
const (
	TaxTypeIntra = "INTRA"
	TaxTypeInter = "INTER"
)

var hundred = decimal.NewFromInt(100)

// Breakup is the tax breakdown of a single line.
type Breakup struct {
	Taxable decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	IGST    decimal.Decimal
	Total   decimal.Decimal
}

// Totals is the document-level aggregate over all lines.
type Totals struct {
	Subtotal   decimal.Decimal // sum of taxable values
	CGST       decimal.Decimal
	SGST       decimal.Decimal
	IGST       decimal.Decimal
	RoundOff   decimal.Decimal // grand total rounding adjustment
	GrandTotal decimal.Decimal // rounded to the nearest rupee
}

// ItemGST computes the tax breakup of one line. gstRate and discountPct are
// percentages (e.g. 12, not 0.12). Components are rounded to 2 decimals.
func ItemGST(qty int64, price, discountPct, gstRate decimal.Decimal, taxType string) Breakup {
	gross := price.Mul(decimal.NewFromInt(qty))
	taxable := gross.Sub(gross.Mul(discountPct).Div(hundred)).Round(2)
	tax := taxable.Mul(gstRate).Div(hundred)

	var out Breakup
	out.Taxable = taxable
	if taxType == TaxTypeInter {
		out.IGST = tax.Round(2)
	} else {
		half := tax.Div(decimal.NewFromInt(2)).Round(2)
		out.CGST = half
		out.SGST = half
	}
	out.Total = taxable.Add(out.CGST).Add(out.SGST).Add(out.IGST)
	return out
}

// DocumentTotals aggregates line breakups and applies document-level charges
// and discount. The grand total is rounded to the nearest rupee; RoundOff
// carries the adjustment so the ledger still balances to the paisa.
func DocumentTotals(lines []Breakup, otherCharges, discount decimal.Decimal) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Taxable)
		t.CGST = t.CGST.Add(l.CGST)
		t.SGST = t.SGST.Add(l.SGST)
		t.IGST = t.IGST.Add(l.IGST)
	}
	raw := t.Subtotal.Add(t.CGST).Add(t.SGST).Add(t.IGST).
		Add(otherCharges).Sub(discount)
	t.GrandTotal = raw.Round(0)
	t.RoundOff = t.GrandTotal.Sub(raw)
	return t
}
