package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/invoices"
)

type stubSource struct {
	byUser map[int64][]invoices.Invoice
	calls  int
}

func (s *stubSource) ListInvoices(ctx context.Context, req invoices.ListInvoicesRequest) (*invoices.ListResult, error) {
	s.calls++
	return &invoices.ListResult{Invoices: s.byUser[req.UserID]}, nil
}

func (s *stubSource) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id := range s.byUser {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubNarrator struct {
	lines []string
	err   error
}

func (s *stubNarrator) Narrate(ctx context.Context, summary Summary) ([]string, error) {
	return s.lines, s.err
}

func invoiceFixture(status invoices.Status, total float64, number string) invoices.Invoice {
	return invoices.Invoice{
		Status: status,
		Doc: invoices.Document{
			"invoiceNumber": number,
			"total":         total,
			"status":        string(status),
			"billTo":        map[string]any{"clientName": "Acme"},
		},
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, 10*time.Minute)
}

func TestSummarize(t *testing.T) {
	list := []invoices.Invoice{
		invoiceFixture(invoices.StatusPaid, 1000, "INV-1"),
		invoiceFixture(invoices.StatusUnpaid, 500, "INV-2"),
		invoiceFixture(invoices.StatusOverdue, 250, "INV-3"),
		invoiceFixture(invoices.StatusPending, 100, "INV-4"),
	}
	summary := Summarize(list)

	assert.Equal(t, 4, summary.TotalInvoices)
	assert.Equal(t, 1, summary.PaidCount)
	// Everything that is not Paid counts as outstanding.
	assert.Equal(t, 3, summary.UnpaidCount)
	assert.Equal(t, 1000.0, summary.TotalRevenue)
	assert.Equal(t, 850.0, summary.TotalOutstanding)
	require.Len(t, summary.Recent, 4)
	assert.Equal(t, "INV-1", summary.Recent[0].InvoiceNumber)
	assert.Equal(t, "Acme", summary.Recent[0].ClientName)
	assert.Equal(t, "Paid", summary.Recent[0].Status)
}

func TestSummarizeKeepsAtMostFiveRecent(t *testing.T) {
	var list []invoices.Invoice
	for i := 0; i < 8; i++ {
		list = append(list, invoiceFixture(invoices.StatusUnpaid, 10, "INV"))
	}
	summary := Summarize(list)
	assert.Len(t, summary.Recent, 5)
}

func TestDashboardNoInvoices(t *testing.T) {
	svc := NewService(nil, &stubSource{byUser: map[int64][]invoices.Invoice{}}, nil, newTestCache(t))

	out, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"No invoice data available to generate insights."}, out.Insights)
	assert.Equal(t, 0, out.Summary.TotalInvoices)
}

func TestDashboardRuleInsights(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {
			invoiceFixture(invoices.StatusPaid, 1000, "INV-1"),
			invoiceFixture(invoices.StatusUnpaid, 500, "INV-2"),
		},
	}}
	svc := NewService(nil, source, nil, newTestCache(t))

	out, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.TotalInvoices)
	require.NotEmpty(t, out.Insights)
	assert.Contains(t, out.Insights[0], "2 invoices")
}

func TestDashboardNarratorPreferred(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {invoiceFixture(invoices.StatusPaid, 1000, "INV-1")},
	}}
	narrator := &stubNarrator{lines: []string{"Looking good."}}
	svc := NewService(nil, source, narrator, newTestCache(t))

	out, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Looking good."}, out.Insights)
}

func TestDashboardNarratorFailureFallsBack(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {invoiceFixture(invoices.StatusPaid, 1000, "INV-1")},
	}}
	narrator := &stubNarrator{err: errors.New("model down")}
	svc := NewService(nil, source, narrator, newTestCache(t))

	out, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, out.Insights)
	assert.Contains(t, out.Insights[0], "1 invoices")
}

func TestDashboardCachesPerUser(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {invoiceFixture(invoices.StatusPaid, 1000, "INV-1")},
	}}
	svc := NewService(nil, source, nil, newTestCache(t))

	_, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestWarmAllBumpsAndRebuilds(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {invoiceFixture(invoices.StatusPaid, 1000, "INV-1")},
		2: {invoiceFixture(invoices.StatusUnpaid, 500, "INV-2")},
	}}
	cache := newTestCache(t)
	svc := NewService(nil, source, nil, cache)

	// Populate under the initial cache version.
	_, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	callsBefore := source.calls

	warmed, err := svc.WarmAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, warmed)
	// The version bump forces fresh builds for both users.
	assert.Equal(t, callsBefore+2, source.calls)
}

func TestCachePassThroughWithoutRedis(t *testing.T) {
	source := &stubSource{byUser: map[int64][]invoices.Invoice{
		1: {invoiceFixture(invoices.StatusPaid, 1000, "INV-1")},
	}}
	svc := NewService(nil, source, nil, nil)

	out, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.TotalInvoices)

	_, err = svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
