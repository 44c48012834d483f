package analytics

import (
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRollup(t *testing.T) {
	meds := []domain.Medicine{
		{Name: "a", Category: "Pain Relief", Stock: 10, Price: 2.5},
		{Name: "b", Category: "", Stock: 3, Price: 10},
		{Name: "c", Category: "Pain Relief", Stock: 1, Price: 0.333},
		{Name: "d", Category: "Antibiotic", Stock: 0, Price: 80},
	}

	rollup := CategoryRollup(meds)

	require.Len(t, rollup, 3)
	assert.Equal(t, domain.CategoryStat{Category: "Pain Relief", Count: 2, Value: 25.33}, rollup[0])
	assert.Equal(t, domain.CategoryStat{Category: "Other", Count: 1, Value: 30}, rollup[1])
	assert.Equal(t, domain.CategoryStat{Category: "Antibiotic", Count: 1, Value: 0}, rollup[2])

	total := 0
	for _, c := range rollup {
		total += c.Count
	}
	assert.Equal(t, len(meds), total)
}

func TestCategoryRollupEmpty(t *testing.T) {
	assert.Empty(t, CategoryRollup(nil))
	assert.NotNil(t, CategoryRollup(nil))
}

func TestBuildReportScenarioA(t *testing.T) {
	today := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		order("1", domain.OrderCompleted, 100, today),
		order("2", domain.OrderCompleted, 50, today.Add(time.Hour)),
		order("3", domain.OrderPending, 999, today.Add(2*time.Hour)),
	}

	report := BuildReport(orders, nil, testNow)

	assert.Equal(t, 150.0, report.Stats.TotalRevenue)
	assert.Equal(t, 3, report.Stats.TotalOrders)
	assert.Equal(t, 1, report.Stats.PendingOrders)
	assert.Equal(t, 2, report.Stats.CompletedOrders)
	assert.Equal(t, 150.0, report.Stats.WeeklyRevenue)
	assert.Equal(t, 75.0, report.Stats.AvgOrderValue)
	assert.Equal(t, 0.0, report.Stats.InventoryValue)
	assert.Equal(t, 0, report.Stats.TotalMedicines)
	assert.Len(t, report.DailyRevenue, RevenueWindowDays)
	assert.Len(t, report.RecentOrders, 3)
	assert.Equal(t, "3", report.RecentOrders[0].ID)
}

func TestBuildReportNoCompletedOrders(t *testing.T) {
	report := BuildReport([]domain.Order{order("1", domain.OrderPending, 10, testNow)}, nil, testNow)

	assert.Equal(t, 0, report.Stats.CompletedOrders)
	assert.Equal(t, 0.0, report.Stats.AvgOrderValue)
	assert.Equal(t, 0.0, report.Stats.TotalRevenue)
}

func TestBuildReportTotalRevenueIncludesOlderOrders(t *testing.T) {
	orders := []domain.Order{
		order("old", domain.OrderDelivered, 40, testNow.AddDate(0, -2, 0)),
		order("new", domain.OrderCompleted, 60, testNow.Add(-time.Hour)),
		order("cancel", domain.OrderCancelled, 500, testNow.Add(-time.Hour)),
		order("proc", domain.OrderProcessing, 25, testNow.Add(-time.Hour)),
	}

	report := BuildReport(orders, nil, testNow)

	assert.Equal(t, 100.0, report.Stats.TotalRevenue)
	assert.Equal(t, 60.0, report.Stats.WeeklyRevenue)
	assert.Equal(t, 50.0, report.Stats.AvgOrderValue)
	assert.Equal(t, 1, report.Stats.CancelledOrders)
	assert.Equal(t, 1, report.Stats.ProcessingOrders)
}

func TestBuildReportInventoryStats(t *testing.T) {
	meds := []domain.Medicine{
		medicine("a", 0, 10, testNow.Add(5*day)),
		medicine("b", 5, 10, testNow.Add(-day)),
		medicine("c", 100, 10, testNow.Add(100*day)),
	}

	report := BuildReport(nil, meds, testNow)

	assert.Equal(t, 3, report.Stats.TotalMedicines)
	assert.Equal(t, 1050.0, report.Stats.InventoryValue)
	assert.Equal(t, 2, report.Stats.LowStockCount)
	assert.Equal(t, 1, report.Stats.ExpiringSoonCount)
	assert.Equal(t, 1, report.Stats.ExpiredCount)
	assert.Len(t, report.CategoryDistribution, 1)
	assert.NotNil(t, report.TopMedicines)
	assert.NotNil(t, report.RecentOrders)
}

func TestRecentOrdersLimitAndRounding(t *testing.T) {
	var orders []domain.Order
	for i := 0; i < 15; i++ {
		orders = append(orders, order(string(rune('a'+i)), domain.OrderPending, 10.005, testNow.Add(time.Duration(i)*time.Minute)))
	}

	recent := RecentOrders(orders, RecentOrdersLimit)

	require.Len(t, recent, RecentOrdersLimit)
	assert.Equal(t, "o", recent[0].ID)
	assert.Equal(t, 10.01, recent[0].Total)
	assert.Equal(t, 10.005, orders[14].Total, "input is not mutated")
}
