package invoice

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultTaxRate is applied when a ledger is built without a valid rate.
const DefaultTaxRate = 0.10

// Field names a mutable attribute of a line item.
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldRate        Field = "rate"
)

// LineItem is a single billable entry.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// Amount is quantity times rate; it is never stored.
func (i LineItem) Amount() float64 {
	return i.Quantity * i.Rate
}

// Ledger is an ordered, editable collection of line items with derived totals.
// Mutations never fail: unknown ids and fields are ignored and bad numbers become zero.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	items   []LineItem
	taxRate float64
	newID   func() string
}

// LedgerOption customizes a ledger at construction.
type LedgerOption func(*Ledger)

// WithTaxRate overrides the default 10% rate. Rates outside [0, 1] and non-finite rates are ignored.
func WithTaxRate(rate float64) LedgerOption {
	return func(l *Ledger) {
		if validRate(rate) {
			l.taxRate = rate
		}
	}
}

// WithIDGenerator replaces the uuid based identifier source.
func WithIDGenerator(gen func() string) LedgerOption {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// WithItems seeds the ledger. Items reusing an id already present are dropped
// and numeric fields are sanitized.
func WithItems(items ...LineItem) LedgerOption {
	return func(l *Ledger) {
		for _, item := range items {
			if item.ID == "" || l.index(item.ID) >= 0 {
				continue
			}
			item.Quantity = sanitize(item.Quantity)
			item.Rate = sanitize(item.Rate)
			l.items = append(l.items, item)
		}
	}
}

// NewLedger builds an empty ledger unless WithItems is supplied.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{taxRate: DefaultTaxRate, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddItem appends a blank item with a fresh id and returns it.
func (l *Ledger) AddItem() LineItem {
	id := l.newID()
	for id == "" || l.index(id) >= 0 {
		id = uuid.NewString()
	}
	item := LineItem{ID: id}
	l.items = append(l.items, item)
	return item
}

// RemoveItem drops the item with the given id, if any.
func (l *Ledger) RemoveItem(id string) {
	if i := l.index(id); i >= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	}
}

// UpdateItem replaces one field of the item with the given id. Quantity and
// rate accept text; anything that is not a finite, non-negative number is stored as 0.
func (l *Ledger) UpdateItem(id string, field Field, value string) {
	i := l.index(id)
	if i < 0 {
		return
	}
	switch field {
	case FieldDescription:
		l.items[i].Description = value
	case FieldQuantity:
		l.items[i].Quantity = ParseAmount(value)
	case FieldRate:
		l.items[i].Rate = ParseAmount(value)
	}
}

// Items returns a copy of the current items in order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *Ledger) Len() int {
	return len(l.items)
}

// TaxRate returns the rate used by Tax.
func (l *Ledger) TaxRate() float64 {
	return l.taxRate
}

// Subtotal sums quantity*rate over the current items.
func (l *Ledger) Subtotal() float64 {
	var sum float64
	for _, item := range l.items {
		sum += item.Amount()
	}
	return sum
}

// Tax is Subtotal times the tax rate.
func (l *Ledger) Tax() float64 {
	return l.Subtotal() * l.taxRate
}

// Total is Subtotal plus Tax.
func (l *Ledger) Total() float64 {
	subtotal := l.Subtotal()
	return subtotal + subtotal*l.taxRate
}

func (l *Ledger) index(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

// ParseAmount reads user supplied numeric text, falling back to 0 for anything
// that is not a finite, non-negative number. The whole trimmed string must
// parse, so text with a numeric prefix such as "12abc" is 0, not 12.
func ParseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate >= 0 && rate <= 1
}
