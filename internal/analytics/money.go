package analytics

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// lineValue returns price × quantity without float drift.
func lineValue(price, quantity float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(quantity))
}

func toMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
