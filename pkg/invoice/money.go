package invoice

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Cents converts a float amount into a decimal rounded to two places.
func Cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatMoney renders an amount such as $2,450.00.
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	fixed := rounded.StringFixed(2)
	return sign + "$" + humanize.BigComma(rounded.BigInt()) + fixed[len(fixed)-3:]
}
