package core

import "github.com/shopspring/decimal"

// SumPrices adds prices in decimal arithmetic so that long batches of
// two-decimal prices do not accumulate binary rounding drift.
func SumPrices(prices ...float64) float64 {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(decimal.NewFromFloat(p))
	}
	return total.InexactFloat64()
}
