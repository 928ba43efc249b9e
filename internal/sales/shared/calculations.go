// Package shared holds calculation helpers used across the sales modules.
//
// All money arithmetic goes through shopspring/decimal so that totals and
// settlement comparisons are exact; float64 is only the storage and
// transport representation.
package shared

import "github.com/shopspring/decimal"

// LineTotal returns quantity*unitPrice rounded to cents.
func LineTotal(quantity, unitPrice float64) float64 {
	total := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	f, _ := total.Round(2).Float64()
	return f
}

// SumMoney adds money values without accumulating float error.
func SumMoney(values ...float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// CompareMoney compares two money values at cent precision.
// It returns -1 when a < b, 0 when equal and 1 when a > b.
func CompareMoney(a, b float64) int {
	return decimal.NewFromFloat(a).Round(2).Cmp(decimal.NewFromFloat(b).Round(2))
}
