// Package insights summarises a user's invoices into dashboard metrics
// and short advisory sentences.
package insights

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/billfold/billfold/internal/invoices"
)

// summaryPageSize bounds how many invoices feed one summary.
const summaryPageSize = 500

// RecentInvoice is a compact projection of one invoice for the dashboard.
type RecentInvoice struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	ClientName    string  `json:"clientName"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
}

// Summary aggregates a user's invoices.
type Summary struct {
	TotalInvoices    int             `json:"totalInvoices"`
	PaidCount        int             `json:"paidCount"`
	UnpaidCount      int             `json:"unpaidCount"`
	TotalRevenue     float64         `json:"totalRevenue"`
	TotalOutstanding float64         `json:"totalOutstanding"`
	Recent           []RecentInvoice `json:"recentInvoices"`
}

// DashboardSummary is the dashboard payload: the numbers plus the
// narrative insight lines derived from them.
type DashboardSummary struct {
	Insights []string `json:"insights"`
	Summary  Summary  `json:"summary"`
}

// InvoiceSource provides the invoice data a summary is built from.
type InvoiceSource interface {
	ListInvoices(ctx context.Context, req invoices.ListInvoicesRequest) (*invoices.ListResult, error)
	ActiveUserIDs(ctx context.Context) ([]int64, error)
}

// Narrator writes the insight lines for a summary. Implementations may
// fail; the service then falls back to rule-built lines.
type Narrator interface {
	Narrate(ctx context.Context, summary Summary) ([]string, error)
}

// Service builds and caches dashboard summaries.
type Service struct {
	logger   *slog.Logger
	source   InvoiceSource
	narrator Narrator
	cache    *Cache
	group    singleflight.Group
}

// NewService wires the summary service. narrator and cache may be nil.
func NewService(logger *slog.Logger, source InvoiceSource, narrator Narrator, cache *Cache) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, source: source, narrator: narrator, cache: cache}
}

// Dashboard returns the cached summary for a user, building it when the
// cache misses. Concurrent builds for the same user are collapsed.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*DashboardSummary, error) {
	key, err := s.cache.BuildKey(ctx, "insights", "user", fmt.Sprintf("%d", userID))
	if err != nil {
		return nil, err
	}
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		var out DashboardSummary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
			return s.build(ctx, userID)
		})
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DashboardSummary), nil
	}
}

// WarmAll invalidates cached summaries and rebuilds one per user that has
// invoices. Used by the background warmup task.
func (s *Service) WarmAll(ctx context.Context) (int, error) {
	if err := s.cache.Bump(ctx); err != nil {
		return 0, err
	}
	userIDs, err := s.source.ActiveUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, userID := range userIDs {
		if _, err := s.Dashboard(ctx, userID); err != nil {
			s.logger.Warn("insights warmup failed for user", "user_id", userID, "error", err)
			continue
		}
		warmed++
	}
	return warmed, nil
}

func (s *Service) build(ctx context.Context, userID int64) (*DashboardSummary, error) {
	list, err := s.source.ListInvoices(ctx, invoices.ListInvoicesRequest{
		UserID:  userID,
		Page:    1,
		PerPage: summaryPageSize,
	})
	if err != nil {
		return nil, err
	}
	if len(list.Invoices) == 0 {
		return &DashboardSummary{
			Insights: []string{"No invoice data available to generate insights."},
		}, nil
	}

	summary := Summarize(list.Invoices)
	lines := s.narrate(ctx, summary)
	return &DashboardSummary{Insights: lines, Summary: summary}, nil
}

func (s *Service) narrate(ctx context.Context, summary Summary) []string {
	if s.narrator != nil {
		lines, err := s.narrator.Narrate(ctx, summary)
		if err == nil && len(lines) > 0 {
			return lines
		}
		if err != nil {
			s.logger.Warn("insight narration failed, using rule-built lines", "error", err)
		}
	}
	return ruleInsights(summary)
}

// Summarize folds invoices into the aggregate numbers. Anything that is
// not Paid counts as outstanding, matching how the dashboard reads
// payment state.
func Summarize(list []invoices.Invoice) Summary {
	summary := Summary{TotalInvoices: len(list)}
	for _, inv := range list {
		amount := invoices.ResolveAmount(inv.Doc)
		if inv.Status == invoices.StatusPaid {
			summary.PaidCount++
			summary.TotalRevenue += amount
		} else {
			summary.UnpaidCount++
			summary.TotalOutstanding += amount
		}
		if len(summary.Recent) < 5 {
			summary.Recent = append(summary.Recent, RecentInvoice{
				InvoiceNumber: docInvoiceNumber(inv.Doc),
				ClientName:    invoices.ResolveClientName(inv.Doc),
				Total:         amount,
				Status:        invoices.ResolveStatusLabel(inv.Doc),
			})
		}
	}
	return summary
}

func docInvoiceNumber(doc invoices.Document) string {
	if s, ok := doc["invoiceNumber"].(string); ok {
		return s
	}
	return ""
}

func ruleInsights(s Summary) []string {
	lines := []string{
		fmt.Sprintf("You have issued %d invoices in total.", s.TotalInvoices),
	}
	if s.PaidCount > 0 {
		lines = append(lines, fmt.Sprintf("%d of %d invoices are paid, bringing in %.2f in revenue.", s.PaidCount, s.TotalInvoices, s.TotalRevenue))
	}
	if s.UnpaidCount > 0 {
		lines = append(lines, fmt.Sprintf("%.2f is outstanding across %d unpaid invoices. Consider sending payment reminders to speed up collection.", s.TotalOutstanding, s.UnpaidCount))
	} else {
		lines = append(lines, "Every invoice is settled. Your cash flow is in great shape.")
	}
	return lines
}
