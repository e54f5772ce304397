package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billfold/billfold/internal/invoices"
)

func sampleInvoice() *invoices.Invoice {
	return &invoices.Invoice{
		ID:      1,
		UserID:  1,
		Status:  invoices.StatusUnpaid,
		DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Doc: invoices.Document{
			"invoiceNumber": "INV-042",
			"invoiceDate":   "2024-05-01",
			"dueDate":       "2024-06-01",
			"total":         155000.0,
			"billFrom": map[string]any{
				"businessName": "Billfold Studio",
				"email":        "accounts@billfold.test",
				"phone":        "+91 99999 00000",
			},
			"billTo": map[string]any{
				"clientName": "Acme Corp",
				"email":      "finance@acme.test",
			},
		},
	}
}

func TestBuildReminderOverdue(t *testing.T) {
	now := time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	reminder := buildReminder(sampleInvoice(), now)

	assert.Equal(t, "Payment Reminder: Invoice INV-042 - 10 Days Overdue", reminder.Subject)
	assert.Equal(t, "finance@acme.test", reminder.To)

	assert.True(t, strings.HasPrefix(reminder.Body, "Dear Acme Corp,"), "body: %s", reminder.Body)
	assert.Contains(t, reminder.Body, "Invoice Number: INV-042")
	assert.Contains(t, reminder.Body, "Invoice Date: 1 May 2024")
	assert.Contains(t, reminder.Body, "Due Date: 1 June 2024")
	assert.Contains(t, reminder.Body, "Amount Due: ₹")
	assert.Contains(t, reminder.Body, "currently 10 days overdue")
	assert.Contains(t, reminder.Body, "Email: accounts@billfold.test")
	assert.Contains(t, reminder.Body, "Phone: +91 99999 00000")
	assert.True(t, strings.HasSuffix(reminder.Body, "Best regards,\nBillfold Studio"), "body: %s", reminder.Body)
}

func TestBuildReminderSingleDayOverdue(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	reminder := buildReminder(sampleInvoice(), now)
	assert.Contains(t, reminder.Subject, "1 Days Overdue")
	assert.Contains(t, reminder.Body, "currently 1 day overdue")
}

func TestBuildReminderNotYetDue(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	reminder := buildReminder(sampleInvoice(), now)

	assert.Equal(t, "Payment Reminder: Invoice INV-042", reminder.Subject)
	assert.Contains(t, reminder.Body, "Payment is due soon.")
	assert.NotContains(t, reminder.Body, "overdue")
}

func TestBuildReminderSparseDocument(t *testing.T) {
	inv := &invoices.Invoice{ID: 2, UserID: 1, Status: invoices.StatusUnpaid, Doc: invoices.Document{}}
	now := time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	reminder := buildReminder(inv, now)

	assert.True(t, strings.HasPrefix(reminder.Body, "Dear Valued Client,"))
	assert.Contains(t, reminder.Body, "Your Business")
	assert.Contains(t, reminder.Body, "Amount Due: ₹0")
	assert.NotContains(t, reminder.Body, "Email:")
	assert.NotContains(t, reminder.Body, "Phone:")
	assert.Empty(t, reminder.To)
}

func TestFormatINRGroupsByLakh(t *testing.T) {
	assert.Equal(t, "1,55,000", formatINR(155000))
	assert.Equal(t, "500", formatINR(500))
}
