package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/billfold/billfold/internal/extract"
	"github.com/billfold/billfold/internal/insights"
	"github.com/billfold/billfold/internal/invoices"
)

// InvoiceReader loads invoices owned by a user.
type InvoiceReader interface {
	GetInvoice(ctx context.Context, userID, id int64) (*invoices.Invoice, error)
}

// Service drafts invoices, reminder emails and insight lines. The Gemini
// client is optional; with a nil client every method takes its
// deterministic path.
type Service struct {
	logger    *slog.Logger
	client    *Client
	extractor *extract.Extractor
	reader    InvoiceReader
	now       func() time.Time
}

// NewService wires the drafting service.
func NewService(logger *slog.Logger, client *Client, extractor *extract.Extractor, reader InvoiceReader) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.New()
	}
	return &Service{
		logger:    logger,
		client:    client,
		extractor: extractor,
		reader:    reader,
		now:       time.Now,
	}
}

// ParseInvoiceText turns free-form text into an invoice draft. The model
// is consulted first when configured; any failure falls through to the
// local pattern extractor, so this never errors.
func (s *Service) ParseInvoiceText(ctx context.Context, text string) extract.Draft {
	if s.client != nil {
		draft, err := s.parseWithModel(ctx, text)
		if err == nil {
			return draft
		}
		s.logger.Warn("model parse failed, using pattern extractor", "error", err)
	}
	return s.extractor.Extract(text)
}

func (s *Service) parseWithModel(ctx context.Context, text string) (extract.Draft, error) {
	prompt := fmt.Sprintf(`Extract invoice information from this text:
%s

Return a JSON object with these keys:
- vendorName: string, the client or vendor the invoice is for
- invoiceNumber: string
- date: string in YYYY-MM-DD format
- items: array of {description: string, quantity: number, rate: number, amount: number}
- totalAmount: number`, text)

	raw, err := s.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return extract.Draft{}, err
	}
	var draft extract.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return extract.Draft{}, fmt.Errorf("decode model draft: %w", err)
	}
	if len(draft.Items) == 0 {
		return extract.Draft{}, fmt.Errorf("model draft has no items")
	}
	return tidyDraft(draft), nil
}

// tidyDraft clamps model output into a usable draft: non-finite numbers
// become zero, missing amounts are derived, the total is rebuilt when
// absent.
func tidyDraft(draft extract.Draft) extract.Draft {
	var sum float64
	for i := range draft.Items {
		item := &draft.Items[i]
		item.Quantity = invoices.SanitizeNumber(item.Quantity)
		item.Rate = invoices.SanitizeNumber(item.Rate)
		item.Amount = invoices.SanitizeNumber(item.Amount)
		if item.Amount == 0 {
			item.Amount = item.Quantity * item.Rate
		}
		sum += item.Amount
	}
	draft.TotalAmount = invoices.SanitizeNumber(draft.TotalAmount)
	if draft.TotalAmount == 0 {
		draft.TotalAmount = sum
	}
	return draft
}

// Reminder drafts a payment reminder for one of the user's invoices. The
// subject and recipient always come from the deterministic template; the
// body is rewritten by the model when one is configured.
func (s *Service) Reminder(ctx context.Context, userID, invoiceID int64) (*Reminder, error) {
	inv, err := s.reader.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	reminder := buildReminder(inv, s.now())

	if s.client != nil {
		body, err := s.rewriteReminder(ctx, inv)
		if err != nil {
			s.logger.Warn("model reminder failed, using template", "error", err)
		} else if body != "" {
			reminder.Body = body
		}
	}
	return &reminder, nil
}

func (s *Service) rewriteReminder(ctx context.Context, inv *invoices.Invoice) (string, error) {
	prompt := fmt.Sprintf(`Write a professional payment reminder email for an invoice.

Invoice Number: %s
Client: %s
Amount Due: ₹%s
Due Date: %s

Write a polite but firm reminder email. Return only the email body text.`,
		docString(inv.Doc, "invoiceNumber"),
		invoices.ResolveClientName(inv.Doc),
		formatINR(invoices.ResolveAmount(inv.Doc)),
		inv.DueDate.Format(bodyDateLayout))

	body, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// Narrate writes dashboard insight lines for a summary. Implements the
// insights narrator; errors make the caller fall back to rule-built
// lines.
func (s *Service) Narrate(ctx context.Context, summary insights.Summary) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("ai: no model configured")
	}

	var recent strings.Builder
	for i, inv := range summary.Recent {
		if i > 0 {
			recent.WriteString(", ")
		}
		fmt.Fprintf(&recent, "Invoice #%s for %.2f with status %s", inv.InvoiceNumber, inv.Total, inv.Status)
	}

	prompt := fmt.Sprintf(`Analyze this invoice data and provide a concise business summary with insights.

- Total number of invoices: %d
- Total paid invoices: %d
- Total unpaid/pending invoices: %d
- Total revenue from paid invoices: %.2f
- Total outstanding amount from unpaid/pending invoices: %.2f
- Recent invoices (last 5): %s

Return your response as a valid JSON object with a single key "insights" which is an array of strings.
Example format: { "insights": ["Your revenue is looking strong this month!", "You have 5 overdue invoices"] }

Provide insights about:
1. Revenue trends
2. Payment status overview
3. Recommendations for improving cash flow`,
		summary.TotalInvoices, summary.PaidCount, summary.UnpaidCount,
		summary.TotalRevenue, summary.TotalOutstanding, recent.String())

	raw, err := s.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	return decoded.Insights, nil
}
