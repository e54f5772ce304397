package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/shared"
)

type mockRepository struct {
	invoices map[int64]*Invoice
	nextID   int64

	markOverdueAsOf time.Time
	markOverdueN    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{invoices: make(map[int64]*Invoice), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	stored := *inv
	stored.ID = m.nextID
	m.nextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.invoices[stored.ID] = &stored
	return &stored, nil
}

func (m *mockRepository) GetByID(ctx context.Context, userID, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, shared.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.UserID != req.UserID {
			continue
		}
		if req.Status != "" && inv.Status != req.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if _, ok := m.invoices[inv.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	stored := *inv
	stored.UpdatedAt = time.Now()
	m.invoices[inv.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, userID, id int64, status Status) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, shared.ErrNotFound
	}
	inv.Status = status
	inv.Doc["status"] = string(status)
	copied := *inv
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, id int64) error {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return shared.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	m.markOverdueAsOf = asOf
	var n int64
	for _, inv := range m.invoices {
		if inv.Status == StatusUnpaid && !inv.DueDate.IsZero() && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			inv.Doc["status"] = string(StatusOverdue)
			n++
		}
	}
	m.markOverdueN = n
	return n, nil
}

func (m *mockRepository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, inv := range m.invoices {
		if !seen[inv.UserID] {
			seen[inv.UserID] = true
			ids = append(ids, inv.UserID)
		}
	}
	return ids, nil
}

func newTestService(repo RepositoryPort) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func sampleInput() InvoiceInput {
	return InvoiceInput{
		InvoiceNumber: "INV-001",
		InvoiceDate:   "2024-06-01",
		DueDate:       "2024-07-01",
		BillTo:        map[string]any{"clientName": "Acme Corp", "email": "billing@acme.test"},
		Items: []LineItemInput{
			{Name: "Consulting", Quantity: 10, UnitPrice: 150, TaxPercent: 18},
			{Name: "Hosting", Quantity: 1, UnitPrice: 500, TaxPercent: 0},
		},
	}
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	inv, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	assert.Equal(t, StatusUnpaid, inv.Status)
	assert.Equal(t, "2024-07-01", inv.DueDate.Format("2006-01-02"))
	assert.InDelta(t, 2000.0, inv.Doc["subtotal"], 1e-9)
	assert.InDelta(t, 270.0, inv.Doc["taxTotal"], 1e-9)
	assert.InDelta(t, 2270.0, inv.Doc["total"], 1e-9)
	assert.Equal(t, "Unpaid", inv.Doc["status"])
	assert.Equal(t, "Acme Corp", ResolveClientName(inv.Doc))
}

func TestCreateInvoiceIgnoresSubmittedStatus(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	input := sampleInput()
	input.Status = "Paid"
	inv, err := svc.CreateInvoice(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, inv.Status)
}

func TestCreateInvoiceRequiresUser(t *testing.T) {
	svc := newTestService(newMockRepository())
	_, err := svc.CreateInvoice(context.Background(), 0, sampleInput())
	assert.Error(t, err)
}

func TestCreateInvoiceDefaultsDates(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	input := sampleInput()
	input.InvoiceDate = ""
	input.DueDate = "not-a-date"
	inv, err := svc.CreateInvoice(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", inv.Doc["invoiceDate"])
	assert.Equal(t, "2024-06-15", inv.Doc["dueDate"])
}

func TestUpdateInvoiceKeepsStatusWhenInvalid(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), 1, created.ID, "Paid")
	require.NoError(t, err)

	input := sampleInput()
	input.Status = "bogus"
	updated, err := svc.UpdateInvoice(context.Background(), 1, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)
}

func TestUpdateInvoiceAppliesValidStatus(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	input := sampleInput()
	input.Status = "pending"
	updated, err := svc.UpdateInvoice(context.Background(), 1, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, "Pending", updated.Doc["status"])
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), 1, created.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// Any valid transition is allowed, including away from Paid.
func TestUpdateStatusUnrestrictedTransitions(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	for _, target := range []string{"Paid", "Unpaid", "Overdue", "Pending", "Unpaid"} {
		inv, err := svc.UpdateStatus(context.Background(), 1, created.ID, target)
		require.NoError(t, err)
		assert.Equal(t, Status(target), inv.Status)
	}
}

func TestGetInvoiceScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	_, err = svc.GetInvoice(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMarkOverdueOnlyPromotesUnpaid(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	pastDue := sampleInput()
	pastDue.DueDate = "2024-05-01"
	unpaid, err := svc.CreateInvoice(context.Background(), 1, pastDue)
	require.NoError(t, err)

	paid, err := svc.CreateInvoice(context.Background(), 1, pastDue)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), 1, paid.ID, "Paid")
	require.NoError(t, err)

	notDue, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	changed, err := svc.MarkOverdue(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	got, err := svc.GetInvoice(context.Background(), 1, unpaid.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, got.Status)

	got, err = svc.GetInvoice(context.Background(), 1, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)

	got, err = svc.GetInvoice(context.Background(), 1, notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, got.Status)

	// Zero asOf falls back to the service clock.
	assert.Equal(t, svc.now(), repo.markOverdueAsOf)
}

func TestListInvoicesPaginationDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.CreateInvoice(context.Background(), 1, sampleInput())
	require.NoError(t, err)

	result, err := svc.ListInvoices(context.Background(), ListInvoicesRequest{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, result.Invoices, 1)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, 20, result.Pagination.PerPage)
	assert.Equal(t, 1, result.Pagination.Total)
}
