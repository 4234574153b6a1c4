// Package parse centralizes coercion of distributor-formatted strings into
// numeric values. Distributors return the same logical quantity in many
// shapes ("1,234 In Stock", "$12.50", "14 Days"); every parser here falls
// back to zero rather than erroring so that a malformed upstream field
// degrades a single value, not the whole lookup.
package parse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/partsignal/sourcing-cli/internal/model"
)

// Quantity parses a stock or order quantity. It takes the first
// whitespace-separated token, strips thousands separators, and returns 0 if
// no leading integer can be recovered ("1,234 In Stock" -> 1234).
func Quantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	tok := strings.Fields(s)[0]
	tok = strings.ReplaceAll(tok, ",", "")
	digits := leadingDigits(tok)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// Money parses a currency string into a unit price. Currency symbols and
// thousands separators are stripped ("$12.50" -> 12.50); unparseable input
// yields 0.
func Money(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// LeadWeeks parses a lead-time string into whole weeks. A "day" unit is
// converted by integer division ("14 Days" -> 2); "week" or a bare number is
// taken as weeks already. Unparseable input yields 0.
func LeadWeeks(s string) int {
	n := allDigits(s)
	if n == 0 {
		return 0
	}
	if strings.Contains(strings.ToLower(s), "day") {
		return n / 7
	}
	return n
}

// WeeksFromDays converts a day count reported as a number into whole weeks.
func WeeksFromDays(days int) int {
	if days <= 0 {
		return 0
	}
	return days / 7
}

// FormatPriceBreaks renders break tiers as "1: $1.20, 100: $0.95".
func FormatPriceBreaks(breaks []model.PriceBreak) string {
	if len(breaks) == 0 {
		return "Not available"
	}
	parts := make([]string, 0, len(breaks))
	for _, pb := range breaks {
		parts = append(parts, fmt.Sprintf("%d: $%.2f", pb.Quantity, pb.UnitPrice))
	}
	return strings.Join(parts, ", ")
}

// PriceBreaks parses the FormatPriceBreaks form back into ordered tiers.
// Malformed entries are skipped; the result is sorted ascending by quantity.
func PriceBreaks(s string) []model.PriceBreak {
	var breaks []model.PriceBreak
	for _, entry := range strings.Split(s, ",") {
		qty, price, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		q := Quantity(qty)
		p := Money(price)
		if q <= 0 {
			continue
		}
		breaks = append(breaks, model.PriceBreak{Quantity: q, UnitPrice: p})
	}
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Quantity < breaks[j].Quantity })
	return breaks
}

// leadingDigits returns the run of digits at the start of s.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// allDigits concatenates every digit in s into one integer, matching how
// distributor lead-time strings embed a single number in prose.
func allDigits(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
