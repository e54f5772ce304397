package invoices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNumber(t *testing.T) {
	assert.Equal(t, 0.0, SanitizeNumber(math.NaN()))
	assert.Equal(t, 0.0, SanitizeNumber(math.Inf(1)))
	assert.Equal(t, 0.0, SanitizeNumber(math.Inf(-1)))
	assert.Equal(t, 12.5, SanitizeNumber(12.5))
	assert.Equal(t, -3.0, SanitizeNumber(-3))
	assert.Equal(t, 0.0, SanitizeNumber(0))
}

func TestComputeLineItem(t *testing.T) {
	item := ComputeLineItem(LineItem{Quantity: 2, UnitPrice: 100, TaxPercent: 18})
	assert.Equal(t, 236.0, item.Total)

	item = ComputeLineItem(LineItem{Quantity: 3, UnitPrice: 33.335, TaxPercent: 0})
	assert.Equal(t, 100.01, item.Total)

	item = ComputeLineItem(LineItem{Quantity: 0, UnitPrice: 500, TaxPercent: 18})
	assert.Equal(t, 0.0, item.Total)

	item = ComputeLineItem(LineItem{Quantity: math.NaN(), UnitPrice: 100, TaxPercent: 18})
	assert.Equal(t, 0.0, item.Quantity)
	assert.Equal(t, 0.0, item.Total)

	item = ComputeLineItem(LineItem{Quantity: 1, UnitPrice: math.Inf(1), TaxPercent: 0})
	assert.Equal(t, 0.0, item.UnitPrice)
	assert.Equal(t, 0.0, item.Total)
}

func TestComputeInvoiceTotalsEmpty(t *testing.T) {
	totals := ComputeInvoiceTotals(nil)
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxTotal)
	assert.Equal(t, 0.0, totals.Total)
}

func TestComputeInvoiceTotals(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: 100, TaxPercent: 18},
		{Quantity: 1, UnitPrice: 50, TaxPercent: 5},
	}
	totals := ComputeInvoiceTotals(items)
	assert.InDelta(t, 250.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 38.5, totals.TaxTotal, 1e-9)
	assert.InDelta(t, totals.Subtotal+totals.TaxTotal, totals.Total, 1e-9)
}

// The aggregate accumulates pre-rounding values, so it can differ from the
// sum of the rounded per-item totals.
func TestComputeInvoiceTotalsDoesNotCompoundRounding(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, UnitPrice: 0.333, TaxPercent: 0},
		{Quantity: 1, UnitPrice: 0.333, TaxPercent: 0},
		{Quantity: 1, UnitPrice: 0.333, TaxPercent: 0},
	}
	totals := ComputeInvoiceTotals(items)
	assert.InDelta(t, 0.999, totals.Subtotal, 1e-9)

	var roundedSum float64
	for _, item := range items {
		roundedSum += ComputeLineItem(item).Total
	}
	assert.InDelta(t, 0.99, roundedSum, 1e-9)
}

func TestComputeInvoiceTotalsSanitizesBadInputs(t *testing.T) {
	items := []LineItem{
		{Quantity: math.NaN(), UnitPrice: 100, TaxPercent: 18},
		{Quantity: 1, UnitPrice: 200, TaxPercent: math.Inf(1)},
	}
	totals := ComputeInvoiceTotals(items)
	assert.Equal(t, 200.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.TaxTotal)
	assert.Equal(t, 200.0, totals.Total)
}

func TestComputeLineItemIdempotent(t *testing.T) {
	once := ComputeLineItem(LineItem{Quantity: 7, UnitPrice: 19.99, TaxPercent: 12.5})
	twice := ComputeLineItem(once)
	assert.Equal(t, once, twice)
}
