package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billfold/billfold/internal/shared"
)

const dateLayout = "2006-01-02"

// ErrInvalidStatus rejects status values outside the flat enum.
var ErrInvalidStatus = errors.New("invoices: invalid status")

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	GetByID(ctx context.Context, userID, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	Update(ctx context.Context, inv *Invoice) (*Invoice, error)
	UpdateStatus(ctx context.Context, userID, id int64, status Status) (*Invoice, error)
	Delete(ctx context.Context, userID, id int64) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	ActiveUserIDs(ctx context.Context) ([]int64, error)
}

// Service handles invoice business logic. Totals are always recomputed
// server-side from the submitted items.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListResult bundles a page of invoices with pagination metadata.
type ListResult struct {
	Invoices   []Invoice
	Pagination shared.Pagination
}

// CreateInvoice sanitizes the submitted items, computes totals and persists
// a new invoice owned by userID. A new invoice always starts Unpaid.
func (s *Service) CreateInvoice(ctx context.Context, userID int64, input InvoiceInput) (*Invoice, error) {
	if userID == 0 {
		return nil, fmt.Errorf("invoices: user ID required")
	}
	items := sanitizeItems(input.Items)
	totals := ComputeInvoiceTotals(items)

	invoiceDate := s.parseDate(input.InvoiceDate)
	dueDate := s.parseDate(input.DueDate)

	inv := &Invoice{
		UserID:  userID,
		Status:  StatusUnpaid,
		DueDate: dueDate,
		Doc:     buildDocument(input, items, totals, invoiceDate, dueDate, StatusUnpaid),
	}
	return s.repo.Create(ctx, inv)
}

// GetInvoice fetches an invoice owned by userID.
func (s *Service) GetInvoice(ctx context.Context, userID, id int64) (*Invoice, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListInvoices returns the user's invoices newest first.
func (s *Service) ListInvoices(ctx context.Context, req ListInvoicesRequest) (*ListResult, error) {
	if req.PerPage <= 0 {
		req.PerPage = 20
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Invoices:   list,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// UpdateInvoice replaces an invoice's document, recomputing all totals.
// The status is taken from the request when valid, otherwise the stored
// status is kept; transitions are unrestricted.
func (s *Service) UpdateInvoice(ctx context.Context, userID, id int64, input InvoiceInput) (*Invoice, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	items := sanitizeItems(input.Items)
	totals := ComputeInvoiceTotals(items)

	invoiceDate := s.parseDate(input.InvoiceDate)
	dueDate := s.parseDate(input.DueDate)

	status := existing.Status
	if parsed, ok := ParseStatus(input.Status); ok {
		status = parsed
	}

	existing.Status = status
	existing.DueDate = dueDate
	existing.Doc = buildDocument(input, items, totals, invoiceDate, dueDate, status)
	return s.repo.Update(ctx, existing)
}

// UpdateStatus applies a status-only change after validating the value
// against the flat status enum.
func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, raw string) (*Invoice, error) {
	status, ok := ParseStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, raw)
	}
	return s.repo.UpdateStatus(ctx, userID, id, status)
}

// DeleteInvoice removes an owned invoice.
func (s *Service) DeleteInvoice(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

// MarkOverdue promotes Unpaid invoices past due to Overdue. Paid and
// Pending invoices are never touched, so manual assignments stand.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.repo.MarkOverdue(ctx, asOf)
}

// ActiveUserIDs lists users that own at least one invoice.
func (s *Service) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ActiveUserIDs(ctx)
}

func sanitizeItems(inputs []LineItemInput) []LineItem {
	items := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, ComputeLineItem(LineItem{
			Name:       in.Name,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TaxPercent: in.TaxPercent,
		}))
	}
	return items
}

func (s *Service) parseDate(raw string) time.Time {
	if raw == "" {
		return s.now().UTC().Truncate(24 * time.Hour)
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return s.now().UTC().Truncate(24 * time.Hour)
	}
	return t
}

func buildDocument(input InvoiceInput, items []LineItem, totals InvoiceTotals, invoiceDate, dueDate time.Time, status Status) Document {
	docItems := make([]any, 0, len(items))
	for _, item := range items {
		docItems = append(docItems, map[string]any{
			"name":       item.Name,
			"quantity":   item.Quantity,
			"unitPrice":  item.UnitPrice,
			"taxPercent": item.TaxPercent,
			"total":      item.Total,
		})
	}

	billFrom := input.BillFrom
	if billFrom == nil {
		billFrom = map[string]any{}
	}
	billTo := input.BillTo
	if billTo == nil {
		billTo = map[string]any{}
	}

	return Document{
		"invoiceNumber": input.InvoiceNumber,
		"invoiceDate":   invoiceDate.Format(dateLayout),
		"dueDate":       dueDate.Format(dateLayout),
		"billFrom":      billFrom,
		"billTo":        billTo,
		"items":         docItems,
		"notes":         input.Notes,
		"paymentTerms":  input.PaymentTerms,
		"subtotal":      totals.Subtotal,
		"taxTotal":      totals.TaxTotal,
		"total":         totals.Total,
		"status":        string(status),
	}
}
