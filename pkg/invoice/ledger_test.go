package invoice

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func sampleLedger() *Ledger {
	return NewLedger(WithItems(
		LineItem{ID: "1", Description: "Web Design Services", Quantity: 40, Rate: 75},
		LineItem{ID: "2", Description: "Frontend Development", Quantity: 60, Rate: 85},
	))
}

func TestLedgerTotals(t *testing.T) {
	l := sampleLedger()

	assert.InDelta(t, 8100.0, l.Subtotal(), 1e-9)
	assert.InDelta(t, 810.0, l.Tax(), 1e-9)
	assert.InDelta(t, 8910.0, l.Total(), 1e-9)
	assert.Equal(t, DefaultTaxRate, l.TaxRate())
}

func TestLedgerRemoveUnknownIsNoop(t *testing.T) {
	l := sampleLedger()
	before := l.Items()

	l.RemoveItem("missing")

	assert.Equal(t, before, l.Items())
	assert.InDelta(t, 8910.0, l.Total(), 1e-9)
}

func TestLedgerAddAndRemove(t *testing.T) {
	l := NewLedger(WithIDGenerator(sequentialIDs()))

	first := l.AddItem()
	second := l.AddItem()
	assert.Equal(t, "item-1", first.ID)
	assert.Equal(t, "item-2", second.ID)
	assert.Zero(t, first.Quantity)
	assert.Zero(t, first.Rate)
	assert.Empty(t, first.Description)
	assert.Equal(t, 2, l.Len())

	l.RemoveItem(first.ID)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, "item-2", l.Items()[0].ID)
}

func TestLedgerAddItemNeverDuplicatesIDs(t *testing.T) {
	l := NewLedger(WithIDGenerator(func() string { return "same" }))

	a := l.AddItem()
	b := l.AddItem()

	assert.NotEqual(t, a.ID, b.ID)
}

func TestLedgerUpdateItem(t *testing.T) {
	l := sampleLedger()

	l.UpdateItem("1", FieldDescription, "Discovery")
	l.UpdateItem("1", FieldQuantity, "10")
	l.UpdateItem("2", FieldRate, " 100.5 ")
	l.UpdateItem("missing", FieldQuantity, "99")
	l.UpdateItem("1", Field("colour"), "blue")

	items := l.Items()
	assert.Equal(t, "Discovery", items[0].Description)
	assert.Equal(t, 10.0, items[0].Quantity)
	assert.Equal(t, 100.5, items[1].Rate)
	assert.InDelta(t, 10*75+60*100.5, l.Subtotal(), 1e-9)
}

func TestLedgerUpdateCoercesInvalidNumbers(t *testing.T) {
	for _, raw := range []string{"abc", "", "NaN", "Inf", "-Inf", "-3", "1e400"} {
		t.Run(raw, func(t *testing.T) {
			l := sampleLedger()
			l.UpdateItem("1", FieldQuantity, raw)

			assert.Zero(t, l.Items()[0].Quantity)
			assert.False(t, math.IsNaN(l.Total()))
			assert.False(t, math.IsInf(l.Total(), 0))
			assert.InDelta(t, 5100.0, l.Subtotal(), 1e-9)
		})
	}
}

func TestLedgerWithItemsDropsDuplicates(t *testing.T) {
	l := NewLedger(WithItems(
		LineItem{ID: "a", Quantity: 1, Rate: 1},
		LineItem{ID: "a", Quantity: 5, Rate: 5},
		LineItem{ID: "b", Quantity: math.NaN(), Rate: 2},
	))

	require.Equal(t, 2, l.Len())
	assert.Equal(t, 1.0, l.Subtotal())
}

func TestLedgerTaxRate(t *testing.T) {
	l := NewLedger(WithTaxRate(0.2), WithItems(LineItem{ID: "x", Quantity: 2, Rate: 50}))
	assert.InDelta(t, 20.0, l.Tax(), 1e-9)

	assert.Equal(t, 1.0, NewLedger(WithTaxRate(1)).TaxRate())
	for _, bad := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		assert.Equal(t, DefaultTaxRate, NewLedger(WithTaxRate(bad)).TaxRate())
	}
}

func TestParseAmountRequiresWholeNumber(t *testing.T) {
	assert.Equal(t, 12.0, ParseAmount(" 12 "))
	assert.Equal(t, 12.5, ParseAmount("12.5"))
	assert.Equal(t, 0.0, ParseAmount("12abc"))
	assert.Equal(t, 0.0, ParseAmount("$12"))
	assert.Equal(t, 0.0, ParseAmount(""))
}

func TestLedgerItemsIsACopy(t *testing.T) {
	l := sampleLedger()
	items := l.Items()
	items[0].Quantity = 1000

	assert.InDelta(t, 8100.0, l.Subtotal(), 1e-9)
}

func TestLedgerRandomSequencesKeepTotalsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := NewLedger(WithIDGenerator(sequentialIDs()))

	for step := 0; step < 500; step++ {
		items := l.Items()
		switch op := rng.Intn(4); {
		case op == 0 || len(items) == 0:
			l.AddItem()
		case op == 1:
			l.RemoveItem(items[rng.Intn(len(items))].ID)
		case op == 2:
			l.UpdateItem(items[rng.Intn(len(items))].ID, FieldQuantity, fmt.Sprintf("%.2f", rng.Float64()*100))
		default:
			l.UpdateItem(items[rng.Intn(len(items))].ID, FieldRate, fmt.Sprintf("%.2f", rng.Float64()*200))
		}

		var want float64
		seen := make(map[string]bool)
		for _, item := range l.Items() {
			require.False(t, seen[item.ID], "duplicate id %s", item.ID)
			seen[item.ID] = true
			want += item.Quantity * item.Rate
		}
		require.InDelta(t, want, l.Subtotal(), 1e-9)
		require.InDelta(t, l.Subtotal()*l.TaxRate(), l.Tax(), 1e-9)
		require.InDelta(t, l.Subtotal()+l.Tax(), l.Total(), 1e-9)
	}
}
