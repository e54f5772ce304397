package invoices

import "math"

// SanitizeNumber clamps NaN and infinities to zero so bad arithmetic inputs
// never reach persisted totals. Finite values pass through unchanged.
func SanitizeNumber(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ComputeLineItem sanitizes the item inputs and recomputes its derived
// total: quantity * unitPrice * (1 + taxPercent/100), rounded to two
// decimal places half away from zero. Negative inputs are not rejected
// here; range validation belongs to the request layer.
func ComputeLineItem(item LineItem) LineItem {
	item.Quantity = SanitizeNumber(item.Quantity)
	item.UnitPrice = SanitizeNumber(item.UnitPrice)
	item.TaxPercent = SanitizeNumber(item.TaxPercent)
	item.Total = round2(item.Quantity * item.UnitPrice * (1 + item.TaxPercent/100))
	return item
}

// ComputeInvoiceTotals aggregates subtotal, tax and grand total from the
// line items. Sums accumulate each item's pre-rounding net and tax rather
// than the rounded per-item totals, so rounding error does not compound
// across items. Each output is independently sanitized.
func ComputeInvoiceTotals(items []LineItem) InvoiceTotals {
	var subtotal, taxTotal float64
	for _, item := range items {
		net := SanitizeNumber(item.Quantity) * SanitizeNumber(item.UnitPrice)
		subtotal += net
		taxTotal += net * SanitizeNumber(item.TaxPercent) / 100
	}
	subtotal = SanitizeNumber(subtotal)
	taxTotal = SanitizeNumber(taxTotal)
	return InvoiceTotals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    SanitizeNumber(subtotal + taxTotal),
	}
}
