package analytics

import (
	"sort"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// RecentOrdersLimit is the number of orders listed under recentOrders
const RecentOrdersLimit = 10

// BuildReport assembles the pharmacist dashboard from already loaded orders and catalog.
// It never fails: malformed numeric fields were coerced to 0 when the records were read.
func BuildReport(orders []domain.Order, medicines []domain.Medicine, now time.Time) domain.AnalyticsReport {
	stats := domain.PharmacistStats{
		TotalOrders:    len(orders),
		TotalMedicines: len(medicines),
		InventoryValue: InventoryValue(medicines),
		WeeklyRevenue:  WindowRevenue(orders, now),
	}

	revenue := decimal.Zero
	for _, o := range orders {
		switch o.Status {
		case domain.OrderPending:
			stats.PendingOrders++
		case domain.OrderProcessing:
			stats.ProcessingOrders++
		case domain.OrderCancelled:
			stats.CancelledOrders++
		}
		if o.Status.IsRevenue() {
			stats.CompletedOrders++
			revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		}
	}

	stats.TotalRevenue = toMoney(revenue)
	if stats.CompletedOrders > 0 {
		stats.AvgOrderValue = toMoney(revenue.Div(decimal.NewFromInt(int64(stats.CompletedOrders))))
	}

	for _, m := range medicines {
		c := Classify(m, now)
		if c.LowStock {
			stats.LowStockCount++
		}
		if c.ExpiringSoon {
			stats.ExpiringSoonCount++
		}
		if c.Expired {
			stats.ExpiredCount++
		}
	}

	return domain.AnalyticsReport{
		Stats:                stats,
		DailyRevenue:         DailyRevenue(orders, now),
		TopMedicines:         TopSellers(orders, TopSellersLimit),
		CategoryDistribution: CategoryRollup(medicines),
		RecentOrders:         RecentOrders(orders, RecentOrdersLimit),
		GeneratedAt:          now,
	}
}

// RecentOrders returns the newest orders of any status with totals rounded.
func RecentOrders(orders []domain.Order, limit int) []domain.Order {
	recent := make([]domain.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	if len(recent) > limit {
		recent = recent[:limit]
	}
	for i := range recent {
		recent[i].Total = Round2(recent[i].Total)
	}
	return recent
}
