package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats a dollar amount with thousands separators and no cents,
// e.g. "$1,234,567". Negative amounts keep the sign before the symbol.
func Currency(amount float64) string {
	if amount < 0 {
		return printer.Sprintf("-$%.0f", -amount)
	}
	return printer.Sprintf("$%.0f", amount)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Multiplier formats a hazard multiplier, e.g. "2.5x".
func Multiplier(m float64) string {
	return printer.Sprintf("%.1fx", m)
}
