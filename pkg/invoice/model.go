package invoice

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"bizflow/pkg/status"
)

// DateLayout is the calendar format used for issue and due dates.
const DateLayout = "2006-01-02"

// Invoice is a stored bill sent, or about to be sent, to a client.
type Invoice struct {
	ID        string          `json:"id"`
	Client    string          `json:"client"`
	Amount    decimal.Decimal `json:"amount"`
	IssueDate string          `json:"issue_date"`
	DueDate   string          `json:"due_date"`
	Status    status.Status   `json:"status"`
	Items     []LineItem      `json:"items"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

// NumericText is a number exactly as the user typed it. JSON numbers and
// strings are both accepted; parsing happens in the ledger.
type NumericText string

// UnmarshalJSON keeps the raw token so "abc", 40 and "40" all reach the ledger unchanged.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	if string(data) == "null" {
		*n = ""
		return nil
	}
	*n = NumericText(data)
	return nil
}

// DraftItem is a line item as typed into the builder; numbers are still text.
type DraftItem struct {
	Description string      `json:"description"`
	Quantity    NumericText `json:"quantity"`
	Rate        NumericText `json:"rate"`
}

// Draft is the invoice builder form.
type Draft struct {
	Number    string      `json:"number"`
	Client    string      `json:"client"`
	IssueDate string      `json:"issue_date"`
	DueDate   string      `json:"due_date"`
	Notes     string      `json:"notes"`
	Items     []DraftItem `json:"items"`
}

// Totals is the preview panel of the builder.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	TaxRate  float64         `json:"tax_rate"`
	Total    decimal.Decimal `json:"total"`
	Items    []LineItem      `json:"items"`
}

// Ledger replays the draft items through a ledger so numeric text is coerced the same way the builder does.
func (d Draft) Ledger(taxRate float64) *Ledger {
	l := NewLedger(WithTaxRate(taxRate))
	for _, item := range d.Items {
		added := l.AddItem()
		l.UpdateItem(added.ID, FieldDescription, item.Description)
		l.UpdateItem(added.ID, FieldQuantity, string(item.Quantity))
		l.UpdateItem(added.ID, FieldRate, string(item.Rate))
	}
	return l
}

// Preview computes the totals of a draft without storing anything.
func Preview(d Draft, taxRate float64) Totals {
	return TotalsOf(d.Ledger(taxRate))
}

// TotalsOf rounds the ledger's derived values to cents.
func TotalsOf(l *Ledger) Totals {
	return Totals{
		Subtotal: Cents(l.Subtotal()),
		Tax:      Cents(l.Tax()),
		TaxRate:  l.TaxRate(),
		Total:    Cents(l.Total()),
		Items:    l.Items(),
	}
}
