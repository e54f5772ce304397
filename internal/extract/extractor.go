// Package extract turns free-form invoice text into a structured draft for
// human review. Everything here is heuristic and best-effort: malformed
// input degrades to defaults, it never fails.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DraftItem is a single extracted billable line.
type DraftItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Draft is the structured result of one extraction. It is always replaced
// wholesale by a fresh extraction, never partially updated.
type Draft struct {
	VendorName    string      `json:"vendorName"`
	InvoiceNumber string      `json:"invoiceNumber"`
	Date          string      `json:"date"`
	Items         []DraftItem `json:"items"`
	TotalAmount   float64     `json:"totalAmount"`
}

var (
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:invoice|inv)[\s#:\-]*([a-zA-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)(?:number|no\.?)[\s:\-]*([a-zA-Z0-9\-]+)`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		regexp.MustCompile(`(\d{4}[\-/]\d{1,2}[\-/]\d{1,2})`),
	}
	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:from|vendor|client|bill to|customer):?\s*([^\n\r]+)`),
		regexp.MustCompile(`(?i)(?:to|for):?\s*([^\n\r]+)`),
	}

	segmentSplit = regexp.MustCompile(`,\s*`)
)

// Extractor runs the extraction pipeline. The clock is injectable so
// generated defaults stay deterministic in tests.
type Extractor struct {
	now func() time.Time
}

// New constructs an Extractor using the wall clock.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// NewWithClock constructs an Extractor with a fixed clock.
func NewWithClock(now func() time.Time) *Extractor {
	return &Extractor{now: now}
}

// Extract parses free text into a draft. Header fields are searched over
// the whole text independently of each other; line items come from
// comma-separated segments matched against the ordered rule set. Absent
// headers fall back to generated defaults and a draft is never item-less.
func (e *Extractor) Extract(text string) Draft {
	now := e.now()

	draft := Draft{
		VendorName:    e.findVendor(text),
		InvoiceNumber: e.findInvoiceNumber(text, now),
		Date:          e.findDate(text, now),
	}

	for _, segment := range segmentSplit.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if item, ok := matchSegment(segment); ok {
			draft.Items = append(draft.Items, item)
		}
	}

	var total float64
	for _, item := range draft.Items {
		total += item.Quantity * item.Rate
	}
	draft.TotalAmount = total

	if len(draft.Items) == 0 {
		draft.Items = []DraftItem{{
			Description: "Products/Services",
			Quantity:    1,
			Rate:        1000,
			Amount:      1000,
		}}
		draft.TotalAmount = 1000
	}

	return draft
}

func (e *Extractor) findInvoiceNumber(text string, now time.Time) string {
	for _, re := range invoiceNumberPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	// Last six digits of the unix-milli timestamp.
	return fmt.Sprintf("INV-%06d", now.UnixMilli()%1000000)
}

func (e *Extractor) findDate(text string, now time.Time) string {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return normalizeDate(m[1], now)
		}
	}
	return now.Format(dateLayout)
}

func (e *Extractor) findVendor(text string) string {
	for _, re := range vendorPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	return "Client Name"
}
