// Package pricing resolves tiered unit prices and splits the GST contained in
// a price into its central/state or integrated parts.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// HomeStateCode prefixes GST numbers registered in the seller's state.
const HomeStateCode = "06"

// Rule prices quantities matching Token, either ">N" (at least N) or "A-B"
// (A to B inclusive).
type Rule struct {
	Token string
	Price decimal.Decimal
}

// Tier is an ordered list of rules, in the order they were declared.
type Tier []Rule

// ResolveUnitPrice scans tiers in order, and rules within a tier in order, and
// returns the first matching price. Without a match the standard price sp wins.
// Overlapping ranges resolve by declaration order, not by value.
func ResolveUnitPrice(sp decimal.Decimal, tiers []Tier, quantity int) decimal.Decimal {
	for _, tier := range tiers {
		for _, rule := range tier {
			if Matches(rule.Token, quantity) {
				return rule.Price
			}
		}
	}
	return sp
}

// Matches reports whether quantity falls in the range token. Malformed tokens
// never match.
func Matches(token string, quantity int) bool {
	token = strings.TrimSpace(token)
	if rest, ok := strings.CutPrefix(token, ">"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		return err == nil && quantity >= n
	}
	lo, hi, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(lo))
	b, errB := strconv.Atoi(strings.TrimSpace(hi))
	if errA != nil || errB != nil {
		return false
	}
	return a <= quantity && quantity <= b
}

// GST is the tax contained in one unit price.
type GST struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

var one = decimal.NewFromInt(1)

// SplitGST backs the tax component out of unitPrice as
// unitPrice / (1 + gstRate). Buyers registered in the home state pay it as
// equal CGST and SGST halves, everyone else as IGST. Amounts are rounded to
// paise. A negative rate is treated as zero.
func SplitGST(unitPrice, gstRate decimal.Decimal, buyerGSTNumber string) GST {
	if gstRate.IsNegative() {
		gstRate = decimal.Zero
	}
	total := unitPrice.Div(one.Add(gstRate))

	if strings.HasPrefix(buyerGSTNumber, HomeStateCode) {
		half := total.Div(decimal.NewFromInt(2)).Round(2)
		return GST{CGST: half, SGST: half, IGST: decimal.Zero}
	}
	return GST{CGST: decimal.Zero, SGST: decimal.Zero, IGST: total.Round(2)}
}
