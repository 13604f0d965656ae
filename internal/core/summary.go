package core

import "math"

type (
	// MonthStatistics summarises sales for one calendar month.
	MonthStatistics struct {
		TotalSaleAmount   float64 `json:"total_sale_amount"`
		TotalSoldItems    int     `json:"total_sold_items"`
		TotalNotSoldItems int     `json:"total_not_sold_items"`
	}

	// BarChart maps each price range label to the number of records in it.
	BarChart map[string]int

	// PieChart maps each observed category to its record count.
	PieChart map[string]int

	// Combined bundles the three month-scoped results.
	Combined struct {
		Statistics MonthStatistics `json:"statistics"`
		BarChart   BarChart        `json:"bar_chart"`
		PieChart   PieChart        `json:"pie_chart"`
	}

	priceBucket struct {
		Label string
		Upper float64 // inclusive
	}
)

// Price ranges are closed on the upper edge; the last one is unbounded.
var priceBuckets = []priceBucket{
	{"0-100", 100},
	{"101-200", 200},
	{"201-300", 300},
	{"301-400", 400},
	{"401-500", 500},
	{"501-600", 600},
	{"601-700", 700},
	{"701-800", 800},
	{"801-900", 900},
	{"901-above", math.Inf(1)},
}

// PriceRangeLabels returns the ten bar chart labels in ascending order.
func PriceRangeLabels() []string {
	labels := make([]string, len(priceBuckets))
	for i, b := range priceBuckets {
		labels[i] = b.Label
	}
	return labels
}

// PriceRange returns the bar chart label a price falls into.
func PriceRange(price float64) string {
	for _, b := range priceBuckets {
		if price <= b.Upper {
			return b.Label
		}
	}
	// NaN compares false against every bound
	return priceBuckets[len(priceBuckets)-1].Label
}

// ComputeStatistics totals sold prices and counts sold and unsold records.
func ComputeStatistics(txs []Transaction) MonthStatistics {
	var stats MonthStatistics
	sold := make([]float64, 0, len(txs))
	for _, t := range txs {
		if t.Sold {
			sold = append(sold, t.Price)
			stats.TotalSoldItems++
		} else {
			stats.TotalNotSoldItems++
		}
	}
	stats.TotalSaleAmount = SumPrices(sold...)
	return stats
}

// ComputeBarChart buckets records by price. Every label is present.
func ComputeBarChart(txs []Transaction) BarChart {
	chart := make(BarChart, len(priceBuckets))
	for _, b := range priceBuckets {
		chart[b.Label] = 0
	}
	for _, t := range txs {
		chart[PriceRange(t.Price)]++
	}
	return chart
}

// ComputePieChart counts records per category.
func ComputePieChart(txs []Transaction) PieChart {
	chart := make(PieChart)
	for _, t := range txs {
		chart[t.Category]++
	}
	return chart
}
