package analytics

import (
	"sort"
	"strings"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// TopSellersLimit is the number of best sellers shown on the dashboard
const TopSellersLimit = 5

type sellerTotals struct {
	name    string
	sold    decimal.Decimal
	revenue decimal.Decimal
}

// TopSellers folds the line items of completed and delivered orders by item name
// and returns the best sellers by revenue. Equal revenue is ordered by name.
// Items without a name are skipped.
func TopSellers(orders []domain.Order, limit int) []domain.TopMedicine {
	if limit <= 0 {
		limit = TopSellersLimit
	}

	byName := make(map[string]*sellerTotals)
	for _, o := range orders {
		if !o.Status.IsRevenue() {
			continue
		}
		for _, item := range o.Items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			entry, ok := byName[name]
			if !ok {
				entry = &sellerTotals{name: name}
				byName[name] = entry
			}
			entry.sold = entry.sold.Add(decimal.NewFromFloat(item.Quantity))
			entry.revenue = entry.revenue.Add(lineValue(item.Price, item.Quantity))
		}
	}

	ranked := make([]*sellerTotals, 0, len(byName))
	for _, entry := range byName {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].revenue.Cmp(ranked[j].revenue); c != 0 {
			return c > 0
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	top := make([]domain.TopMedicine, 0, len(ranked))
	for _, entry := range ranked {
		top = append(top, domain.TopMedicine{
			Name:      entry.name,
			TotalSold: entry.sold.InexactFloat64(),
			Revenue:   toMoney(entry.revenue),
		})
	}
	return top
}
