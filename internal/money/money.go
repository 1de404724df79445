// Package money holds the currency arithmetic used across the ledger.
// All amounts are rupee values carried as float64 and rounded to two
// decimal places after every accumulation step.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// epsilon counteracts binary representation error for values that are
// exact in decimal (0.1+0.2 must round to 0.30, not 0.30000000000000004).
const epsilon = 1e-9

// Round2 rounds x to two decimal places with epsilon correction.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return -math.Round(-x*100+epsilon) / 100
	}
	return math.Round(x*100+epsilon) / 100
}

// Sum accumulates values, rounding after each step so error does not
// build up across long order lists.
func Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total = Round2(total + v)
	}
	return total
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

var inr = message.NewPrinter(language.MustParse("en-IN"))

// Format renders an amount the way statements and invoices display it,
// e.g. ₹1,04,500.50 with Indian digit grouping.
func Format(amount float64) string {
	return inr.Sprintf("₹%.2f", Round2(amount))
}
