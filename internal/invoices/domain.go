package invoices

import (
	"strings"
	"time"
)

// Status enumerates invoice payment statuses. The set is a flat enum:
// any status may be assigned over any other, there is no workflow ordering
// and no terminal state.
type Status string

const (
	StatusUnpaid  Status = "Unpaid"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
	StatusPending Status = "Pending"
)

// AllStatuses lists the accepted statuses in display form.
var AllStatuses = []Status{StatusUnpaid, StatusPaid, StatusOverdue, StatusPending}

// ParseStatus matches a status case-insensitively, returning the canonical
// display form.
func ParseStatus(s string) (Status, bool) {
	for _, status := range AllStatuses {
		if strings.EqualFold(string(status), s) {
			return status, true
		}
	}
	return "", false
}

// LineItem is one billable entry on an invoice. Total is derived and is
// only ever written by ComputeLineItem.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TaxPercent float64 `json:"taxPercent"`
	Total      float64 `json:"total"`
}

// InvoiceTotals aggregates derived amounts. It has no persisted identity of
// its own and is recomputed from the line items on every write.
type InvoiceTotals struct {
	Subtotal float64 `json:"subtotal"`
	TaxTotal float64 `json:"taxTotal"`
	Total    float64 `json:"total"`
}

// Document is the loosely shaped invoice body as persisted. Older records
// and externally imported ones vary in field naming, which is why display
// values go through the resolver instead of struct fields.
type Document map[string]any

// Invoice is a stored invoice row: typed columns for querying plus the
// full document body.
type Invoice struct {
	ID        int64
	UserID    int64
	Status    Status
	DueDate   time.Time
	Doc       Document
	CreatedAt time.Time
	UpdatedAt time.Time
}
