package invoices

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Invoice documents written by older versions of this application, or
// imported from elsewhere, carry their amount and client name under varying
// field names. The resolvers below probe a fixed, ordered list of candidate
// paths and return the first acceptable value, so display code never has to
// know about the historical shapes.

type amountProbe struct {
	path   string
	accept func(f float64) bool
}

func positive(f float64) bool { return f > 0 }

// amountProbes is evaluated in order; the first present, numeric and
// accepted value wins.
var amountProbes = []amountProbe{
	{"total", positive},
	{"totalAmount", positive},
	{"amount", positive},
	{"grandTotal", positive},
	{"invoiceAmount", positive},
	{"finalAmount", positive},
	{"netAmount", positive},
	{"subtotal", positive},
}

// clientNamePaths is evaluated in order; the first non-empty string wins.
var clientNamePaths = []string{
	"billTo.clientName",
	"billTo.name",
	"clientName",
	"client.name",
	"customerName",
}

// ResolveAmount picks the canonical display amount for an invoice document.
// When no candidate field qualifies it recomputes from the items, summing
// each item's own total with a quantity*unitPrice fallback. Unresolvable
// documents yield 0, never an error.
func ResolveAmount(doc Document) float64 {
	for _, probe := range amountProbes {
		value, ok := lookupPath(doc, probe.path)
		if !ok {
			continue
		}
		if f, ok := NumberValue(value); ok && probe.accept(f) {
			return f
		}
	}

	if items, ok := lookupPath(doc, "items"); ok {
		if sum := sumItems(items); sum > 0 {
			return SanitizeNumber(sum)
		}
	}
	return 0
}

// ResolveClientName picks the display client name, falling back to "N/A".
func ResolveClientName(doc Document) string {
	for _, path := range clientNamePaths {
		value, ok := lookupPath(doc, path)
		if !ok {
			continue
		}
		if s, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return "N/A"
}

// ResolveStatusLabel normalizes the stored status to its display form.
// Missing or unrecognized statuses resolve to Unpaid. Comparison is
// case-insensitive, unknown-but-present strings keep their text with the
// first letter capitalized.
func ResolveStatusLabel(doc Document) string {
	raw, ok := lookupPath(doc, "status")
	if !ok {
		return string(StatusUnpaid)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return string(StatusUnpaid)
	}
	s = strings.TrimSpace(s)
	if status, ok := ParseStatus(s); ok {
		return string(status)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// NumberValue coerces a loosely typed document value into a finite float64.
// JSON decoding yields float64, but documents assembled in code may carry
// ints, json.Number or numeric strings.
func NumberValue(v any) (float64, bool) {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case float32:
		f = float64(value)
	case int:
		f = float64(value)
	case int64:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// lookupPath walks dot-separated keys through nested maps.
func lookupPath(doc Document, path string) (any, bool) {
	var current any = map[string]any(doc)
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

func sumItems(items any) float64 {
	list, ok := items.([]any)
	if !ok {
		// Documents built in-process keep typed items.
		if typed, ok := items.([]LineItem); ok {
			var sum float64
			for _, item := range typed {
				if item.Total != 0 {
					sum += item.Total
					continue
				}
				sum += item.Quantity * item.UnitPrice
			}
			return sum
		}
		return 0
	}
	var sum float64
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if total, ok := NumberValue(m["total"]); ok && total != 0 {
			sum += total
			continue
		}
		quantity, _ := NumberValue(m["quantity"])
		unitPrice, _ := NumberValue(m["unitPrice"])
		sum += quantity * unitPrice
	}
	return sum
}
