package invoices

// LineItemInput is a single item as submitted by the client. The derived
// total is never trusted from the request.
type LineItemInput struct {
	Name       string  `json:"name" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"gte=0"`
	UnitPrice  float64 `json:"unitPrice" validate:"gte=0"`
	TaxPercent float64 `json:"taxPercent" validate:"gte=0,lte=100"`
}

// InvoiceInput carries the writable invoice fields for create and update.
// BillFrom and BillTo stay loosely typed: the SPA round-trips whatever
// party shape it has and the resolver copes on the way out.
type InvoiceInput struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	BillFrom      map[string]any  `json:"billFrom"`
	BillTo        map[string]any  `json:"billTo"`
	Items         []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string          `json:"notes"`
	PaymentTerms  string          `json:"paymentTerms"`
	Status        string          `json:"status"`
}

// UpdateStatusInput carries a status-only change.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	UserID  int64
	Status  Status
	Page    int
	PerPage int
}
