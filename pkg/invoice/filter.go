package invoice

import (
	"strings"

	"bizflow/pkg/status"
)

// Filter narrows the invoice list the way the list page search box and status dropdown do.
type Filter struct {
	Query  string
	Status string
}

// Matches reports whether inv passes both the text and the status criteria.
func (f Filter) Matches(inv Invoice) bool {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query != "" &&
		!strings.Contains(strings.ToLower(inv.ID), query) &&
		!strings.Contains(strings.ToLower(inv.Client), query) {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(f.Status))
	if want == "" || want == "all" {
		return true
	}
	return inv.Status == status.Status(want)
}

// FilterInvoices returns the invoices accepted by f, preserving order.
func FilterInvoices(invoices []Invoice, f Filter) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out
}
