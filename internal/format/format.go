// Package format renders money and percentages in Indian notation for the
// API, TUI, bot, and export surfaces.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency renders whole rupees with Indian digit grouping: the last three
// digits form one group, the rest pair up (12,34,56,789).
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	neg := d.IsNegative()
	digits := d.Abs().StringFixed(0)

	grouped := groupIndian(digits)
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// CurrencyExact renders rupees and paise (two decimals) with Indian
// grouping on the integer part.
func CurrencyExact(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	grouped := groupIndian(intPart) + "." + fracPart
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// Percent renders a percentage with two decimals.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Crores renders a fund's assets under management.
func Crores(v float64) string {
	return Currency(v) + " Cr."
}

func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	head := digits[:n-3]
	// Pairs from the right of the head.
	if r := len(head) % 2; r == 1 {
		b.WriteString(head[:1])
		head = head[1:]
		if len(head) > 0 {
			b.WriteString(",")
		}
	}
	for i := 0; i < len(head); i += 2 {
		b.WriteString(head[i : i+2])
		if i+2 < len(head) {
			b.WriteString(",")
		}
	}
	b.WriteString(",")
	b.WriteString(digits[n-3:])
	return b.String()
}
