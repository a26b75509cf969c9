package dashboard

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// round2 rounds half away from zero at two places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatCurrency renders an amount as $1,234.56.
func FormatCurrency(v float64) string {
	r := round2(v)
	if r < 0 {
		return printer.Sprintf("-$%.2f", -r)
	}
	return printer.Sprintf("$%.2f", r)
}

// FormatQuantity renders whole quantities without decimals and others with two.
func FormatQuantity(v float64) string {
	r := round2(v)
	if r == float64(int64(r)) {
		return printer.Sprintf("%d", int64(r))
	}
	return printer.Sprintf("%.2f", r)
}

// FormatPercent renders a 0..1 share as a percentage with one decimal.
func FormatPercent(share float64) string {
	return printer.Sprintf("%.1f%%", decimal.NewFromFloat(share*100).Round(1).InexactFloat64())
}

// GroupLabel is the display name of a categorical value.
func GroupLabel(v string) string {
	if v == "" {
		return "(blank)"
	}
	return v
}
