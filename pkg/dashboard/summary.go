package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"bizflow/pkg/invoice"
	"bizflow/pkg/proposal"
	"bizflow/pkg/status"
)

// recentLimit is how many invoices the recent panel shows.
const recentLimit = 3

// Trend tells the stat card which way to point.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// StatCard is one headline figure.
type StatCard struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Trend  Trend  `json:"trend"`
}

// RecentInvoice is an invoice as shown on the dashboard.
type RecentInvoice struct {
	ID          string        `json:"id"`
	Client      string        `json:"client"`
	Amount      string        `json:"amount"`
	Status      status.Status `json:"status"`
	StatusLabel string        `json:"status_label"`
	Date        string        `json:"date"`
}

// Summary is everything the dashboard page renders.
type Summary struct {
	Stats          []StatCard      `json:"stats"`
	Revenue        []RevenuePoint  `json:"revenue"`
	RecentInvoices []RecentInvoice `json:"recent_invoices"`
	PendingActions []Action        `json:"pending_actions"`
}

// InvoiceLister is the part of the invoice service the dashboard reads.
type InvoiceLister interface {
	List(ctx context.Context, f invoice.Filter) ([]invoice.Invoice, error)
}

// ProposalLister is the part of the proposal service the dashboard reads.
type ProposalLister interface {
	List(ctx context.Context, query string) ([]proposal.Proposal, error)
}

// Service assembles the dashboard from the other services.
type Service struct {
	invoices  InvoiceLister
	proposals ProposalLister
	repo      *Repository
}

// NewService wires the data sources.
func NewService(invoices InvoiceLister, proposals ProposalLister, repo *Repository) *Service {
	return &Service{invoices: invoices, proposals: proposals, repo: repo}
}

// Summary loads the data and computes the dashboard.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	invoices, err := s.invoices.List(ctx, invoice.Filter{})
	if err != nil {
		return Summary{}, fmt.Errorf("list invoices: %w", err)
	}
	proposals, err := s.proposals.List(ctx, "")
	if err != nil {
		return Summary{}, fmt.Errorf("list proposals: %w", err)
	}
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load revenue: %w", err)
	}
	actions, err := s.repo.Actions(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load actions: %w", err)
	}
	return Summarize(invoices, proposals, revenue, actions), nil
}

// Summarize derives the stat cards and panels from raw records.
func Summarize(invoices []invoice.Invoice, proposals []proposal.Proposal, revenue []RevenuePoint, actions []Action) Summary {
	var (
		collected   = decimal.Zero
		outstanding = decimal.Zero
		sent        int
		drafts      int
		overdue     int
	)
	for _, inv := range invoices {
		switch inv.Status {
		case status.Paid:
			collected = collected.Add(inv.Amount)
		case status.Pending:
			outstanding = outstanding.Add(inv.Amount)
		case status.Overdue:
			outstanding = outstanding.Add(inv.Amount)
			overdue++
		}
		if inv.Status == status.Draft {
			drafts++
		} else {
			sent++
		}
	}

	var active, pendingReview int
	for _, p := range proposals {
		switch p.Status {
		case status.Pending:
			pendingReview++
			active++
		case status.Draft:
			active++
		}
	}

	growth, trend := monthOverMonth(revenue)
	paymentsTrend := TrendNeutral
	if overdue > 0 {
		paymentsTrend = TrendDown
	}

	stats := []StatCard{
		{Title: "Total Revenue", Value: invoice.FormatMoney(collected), Change: growth, Trend: trend},
		{Title: "Invoices Sent", Value: fmt.Sprint(sent), Change: fmt.Sprintf("%d drafts in progress", drafts), Trend: TrendUp},
		{Title: "Active Proposals", Value: fmt.Sprint(active), Change: fmt.Sprintf("%d pending review", pendingReview), Trend: TrendNeutral},
		{Title: "Pending Payments", Value: invoice.FormatMoney(outstanding), Change: fmt.Sprintf("%d invoices overdue", overdue), Trend: paymentsTrend},
	}

	return Summary{
		Stats:          stats,
		Revenue:        revenue,
		RecentInvoices: recent(invoices),
		PendingActions: actions,
	}
}

// monthOverMonth compares the last two points of the revenue series.
func monthOverMonth(revenue []RevenuePoint) (string, Trend) {
	if len(revenue) < 2 {
		return "no previous month", TrendNeutral
	}
	prev := revenue[len(revenue)-2].Revenue
	last := revenue[len(revenue)-1].Revenue
	if prev.IsZero() {
		return "no previous month", TrendNeutral
	}
	pct := last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1)
	switch pct.Sign() {
	case 1:
		return "+" + pct.StringFixed(1) + "% from last month", TrendUp
	case -1:
		return pct.StringFixed(1) + "% from last month", TrendDown
	default:
		return "0.0% from last month", TrendNeutral
	}
}

func recent(invoices []invoice.Invoice) []RecentInvoice {
	sorted := make([]invoice.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IssueDate > sorted[j].IssueDate
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	out := make([]RecentInvoice, 0, len(sorted))
	for _, inv := range sorted {
		out = append(out, RecentInvoice{
			ID:          inv.ID,
			Client:      inv.Client,
			Amount:      invoice.FormatMoney(inv.Amount),
			Status:      inv.Status,
			StatusLabel: inv.Status.Label(),
			Date:        inv.IssueDate,
		})
	}
	return out
}
