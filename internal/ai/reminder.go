package ai

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/billfold/billfold/internal/invoices"
)

// Reminder is a drafted payment reminder email. The caller sends it; we
// only write the copy.
type Reminder struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	To      string `json:"to"`
}

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatINR(amount float64) string {
	return inrPrinter.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}

const bodyDateLayout = "2 January 2006"

// buildReminder renders the deterministic reminder template from the
// stored invoice document. It never fails: missing fields degrade to
// neutral phrasing.
func buildReminder(inv *invoices.Invoice, now time.Time) Reminder {
	doc := inv.Doc

	clientName := invoices.ResolveClientName(doc)
	if clientName == "N/A" {
		clientName = "Valued Client"
	}
	amount := invoices.ResolveAmount(doc)
	invoiceNumber := docString(doc, "invoiceNumber")

	businessName := firstDocString(doc, "billFrom", []string{"businessName", "name"}, "Your Business")
	businessEmail := firstDocString(doc, "billFrom", []string{"email"}, "")
	businessPhone := firstDocString(doc, "billFrom", []string{"phone"}, "")

	invoiceDate := formatDocDate(doc, "invoiceDate", now)
	dueDate := inv.DueDate
	if dueDate.IsZero() {
		dueDate = now
	}

	daysOverdue := int(now.Sub(dueDate).Hours() / 24)
	overdue := daysOverdue > 0

	subject := fmt.Sprintf("Payment Reminder: Invoice %s", invoiceNumber)
	if overdue {
		subject = fmt.Sprintf("Payment Reminder: Invoice %s - %d Days Overdue", invoiceNumber, daysOverdue)
	}

	urgency := "Payment is due soon. We would appreciate your prompt attention to this matter."
	if overdue {
		plural := ""
		if daysOverdue > 1 {
			plural = "s"
		}
		urgency = fmt.Sprintf("This invoice is currently %d day%s overdue. We kindly request your immediate attention to settle this outstanding payment.", daysOverdue, plural)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", clientName)
	b.WriteString("I hope this email finds you well.\n\n")
	fmt.Fprintf(&b, "This is a friendly reminder regarding Invoice %s, dated %s.\n\n", invoiceNumber, invoiceDate)
	b.WriteString("Invoice Details:\n")
	fmt.Fprintf(&b, "- Invoice Number: %s\n", invoiceNumber)
	fmt.Fprintf(&b, "- Invoice Date: %s\n", invoiceDate)
	fmt.Fprintf(&b, "- Due Date: %s\n", dueDate.Format(bodyDateLayout))
	fmt.Fprintf(&b, "- Amount Due: ₹%s\n\n", formatINR(amount))
	b.WriteString(urgency)
	b.WriteString("\n\nIf you have already made the payment, please disregard this reminder. If you have any questions or concerns regarding this invoice, please don't hesitate to reach out.\n\n")
	b.WriteString("Payment can be made to:\n")
	b.WriteString(businessName)
	if businessEmail != "" {
		fmt.Fprintf(&b, "\nEmail: %s", businessEmail)
	}
	if businessPhone != "" {
		fmt.Fprintf(&b, "\nPhone: %s", businessPhone)
	}
	b.WriteString("\n\nThank you for your business and cooperation.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s", businessName)

	return Reminder{
		Subject: subject,
		Body:    b.String(),
		To:      firstDocString(doc, "billTo", []string{"email", "clientEmail"}, ""),
	}
}

func docString(doc invoices.Document, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

// firstDocString reads the first non-empty string among keys inside a
// nested object, falling back when the object or all keys are absent.
func firstDocString(doc invoices.Document, object string, keys []string, fallback string) string {
	nested, ok := doc[object].(map[string]any)
	if !ok {
		return fallback
	}
	for _, key := range keys {
		if s, ok := nested[key].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func formatDocDate(doc invoices.Document, key string, now time.Time) string {
	raw := docString(doc, key)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format(bodyDateLayout)
	}
	return now.Format(bodyDateLayout)
}
