package analytics

import (
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// CategoryRollup folds the catalog by category in first-seen order.
func CategoryRollup(medicines []domain.Medicine) []domain.CategoryStat {
	type rollup struct {
		count int
		value decimal.Decimal
	}

	order := make([]string, 0)
	byCategory := make(map[string]*rollup)
	for _, m := range medicines {
		category := m.CategoryOrDefault()
		entry, ok := byCategory[category]
		if !ok {
			entry = &rollup{}
			byCategory[category] = entry
			order = append(order, category)
		}
		entry.count++
		entry.value = entry.value.Add(lineValue(m.Price, float64(m.Stock)))
	}

	stats := make([]domain.CategoryStat, 0, len(order))
	for _, category := range order {
		entry := byCategory[category]
		stats = append(stats, domain.CategoryStat{
			Category: category,
			Count:    entry.count,
			Value:    toMoney(entry.value),
		})
	}
	return stats
}

// InventoryValue is the sum of stock × price over the catalog.
func InventoryValue(medicines []domain.Medicine) float64 {
	total := decimal.Zero
	for _, m := range medicines {
		total = total.Add(lineValue(m.Price, float64(m.Stock)))
	}
	return toMoney(total)
}
