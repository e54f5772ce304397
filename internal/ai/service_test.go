package ai

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/extract"
	"github.com/billfold/billfold/internal/insights"
	"github.com/billfold/billfold/internal/invoices"
	"github.com/billfold/billfold/internal/shared"
)

type stubReader struct {
	invoice *invoices.Invoice
}

func (s *stubReader) GetInvoice(ctx context.Context, userID, id int64) (*invoices.Invoice, error) {
	if s.invoice == nil || s.invoice.UserID != userID || s.invoice.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.invoice, nil
}

func fixedExtractor() *extract.Extractor {
	return extract.NewWithClock(func() time.Time {
		return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	})
}

func TestParseInvoiceTextWithoutClientUsesExtractor(t *testing.T) {
	svc := NewService(nil, nil, fixedExtractor(), &stubReader{})
	draft := svc.ParseInvoiceText(context.Background(), "web design 5 hours at ₹3000")

	require.Len(t, draft.Items, 1)
	assert.Equal(t, "web design", draft.Items[0].Description)
	assert.Equal(t, 15000.0, draft.TotalAmount)
}

func TestParseInvoiceTextModelFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "gemini-2.5-flash")
	svc := NewService(nil, client, fixedExtractor(), &stubReader{})

	draft := svc.ParseInvoiceText(context.Background(), "web design 5 hours at ₹3000")
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 15000.0, draft.TotalAmount)
}

func TestParseInvoiceTextUsesModelDraft(t *testing.T) {
	reply := `{"vendorName":"Acme Corp","invoiceNumber":"INV-9","date":"2024-06-01",` +
		`"items":[{"description":"design","quantity":2,"rate":500}],"totalAmount":0}`
	srv := geminiStub(t, reply, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "key", "gemini-2.5-flash")
	svc := NewService(nil, client, fixedExtractor(), &stubReader{})

	draft := svc.ParseInvoiceText(context.Background(), "some invoice text")
	assert.Equal(t, "Acme Corp", draft.VendorName)
	require.Len(t, draft.Items, 1)
	// Missing amount and total are derived from quantity and rate.
	assert.Equal(t, 1000.0, draft.Items[0].Amount)
	assert.Equal(t, 1000.0, draft.TotalAmount)
}

func TestTidyDraftClampsBadNumbers(t *testing.T) {
	draft := tidyDraft(extract.Draft{
		Items: []extract.DraftItem{
			{Description: "a", Quantity: math.NaN(), Rate: 100},
			{Description: "b", Quantity: 2, Rate: 50, Amount: 100},
		},
		TotalAmount: math.Inf(1),
	})
	assert.Equal(t, 0.0, draft.Items[0].Quantity)
	assert.Equal(t, 0.0, draft.Items[0].Amount)
	assert.Equal(t, 100.0, draft.TotalAmount)
}

func TestReminderWithoutClientUsesTemplate(t *testing.T) {
	reader := &stubReader{invoice: sampleInvoice()}
	svc := NewService(nil, nil, fixedExtractor(), reader)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	}

	reminder, err := svc.Reminder(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Payment Reminder: Invoice INV-042 - 10 Days Overdue", reminder.Subject)
	assert.Contains(t, reminder.Body, "Dear Acme Corp,")
}

func TestReminderUnknownInvoice(t *testing.T) {
	svc := NewService(nil, nil, fixedExtractor(), &stubReader{})
	_, err := svc.Reminder(context.Background(), 1, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReminderModelRewritesBody(t *testing.T) {
	srv := geminiStub(t, "Custom reminder body.", http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "key", "gemini-2.5-flash")
	reader := &stubReader{invoice: sampleInvoice()}
	svc := NewService(nil, client, fixedExtractor(), reader)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	}

	reminder, err := svc.Reminder(context.Background(), 1, 1)
	require.NoError(t, err)
	// Deterministic subject, model-written body.
	assert.Equal(t, "Payment Reminder: Invoice INV-042 - 10 Days Overdue", reminder.Subject)
	assert.Equal(t, "Custom reminder body.", reminder.Body)
}

func TestNarrateWithoutClientErrors(t *testing.T) {
	svc := NewService(nil, nil, fixedExtractor(), &stubReader{})
	_, err := svc.Narrate(context.Background(), insights.Summary{})
	assert.Error(t, err)
}

func TestNarrateDecodesInsights(t *testing.T) {
	srv := geminiStub(t, `{"insights":["Revenue is up.","Chase two unpaid invoices."]}`, http.StatusOK)
	defer srv.Close()

	client := NewClient(srv.URL, "key", "gemini-2.5-flash")
	svc := NewService(nil, client, fixedExtractor(), &stubReader{})

	lines, err := svc.Narrate(context.Background(), insights.Summary{
		TotalInvoices: 3,
		PaidCount:     1,
		UnpaidCount:   2,
		TotalRevenue:  1000,
		Recent:        []insights.RecentInvoice{{InvoiceNumber: "INV-1", Total: 500, Status: "Paid"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue is up.", "Chase two unpaid invoices."}, lines)
}
