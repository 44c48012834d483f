package analytics

import (
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id string, status domain.OrderStatus, total float64, createdAt time.Time, items ...domain.LineItem) domain.Order {
	return domain.Order{
		ID:           id,
		PharmacistID: "ph-1",
		CustomerID:   "cu-1",
		Status:       status,
		Total:        total,
		Items:        items,
		CreatedAt:    createdAt,
	}
}

func TestDailyRevenueBuckets(t *testing.T) {
	series := DailyRevenue(nil, testNow)

	require.Len(t, series, RevenueWindowDays)
	assert.Equal(t, time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC), series[6].Date)
	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].Date.AddDate(0, 0, 1), series[i].Date)
		assert.Zero(t, series[i].Revenue)
		assert.Zero(t, series[i].Orders)
	}
}

func TestDailyRevenueUsesLocalMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.October, 16, 1, 0, 0, 0, ist)

	series := DailyRevenue(nil, now)
	assert.Equal(t, time.Date(2026, time.October, 10, 0, 0, 0, 0, ist), series[0].Date)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, ist), series[6].Date)
}

func TestDailyRevenueAttribution(t *testing.T) {
	todayStart := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		order("1", domain.OrderCompleted, 100.10, todayStart.Add(time.Hour)),
		order("2", domain.OrderDelivered, 49.90, todayStart),
		order("3", domain.OrderPending, 999, todayStart.Add(2*time.Hour)),
		order("4", domain.OrderCancelled, 20, todayStart.Add(3*time.Hour)),
		order("5", domain.OrderCompleted, 30, todayStart.AddDate(0, 0, -6)),
		order("6", domain.OrderCompleted, 70, todayStart.AddDate(0, 0, -6).Add(-time.Millisecond)),
		order("7", domain.OrderCompleted, 12.5, todayStart.Add(-time.Millisecond)),
		order("8", domain.OrderCompleted, 0, todayStart.Add(-2*time.Hour)),
	}

	series := DailyRevenue(orders, testNow)

	assert.Equal(t, 150.0, series[6].Revenue)
	assert.Equal(t, 2, series[6].Orders)

	assert.Equal(t, 12.5, series[5].Revenue)
	assert.Equal(t, 2, series[5].Orders, "zero-total order still counts")

	assert.Equal(t, 30.0, series[0].Revenue)
	assert.Equal(t, 1, series[0].Orders)
}

func TestDailyRevenueSumMatchesWindowRevenue(t *testing.T) {
	base := time.Date(2026, time.October, 5, 8, 0, 0, 0, time.UTC)
	var orders []domain.Order
	statuses := []domain.OrderStatus{domain.OrderCompleted, domain.OrderPending, domain.OrderDelivered, domain.OrderCancelled}
	for i := 0; i < 60; i++ {
		orders = append(orders, order("o", statuses[i%len(statuses)], float64(i)*1.25+0.35, base.Add(time.Duration(i)*5*time.Hour)))
	}

	series := DailyRevenue(orders, testNow)

	var sum float64
	for _, b := range series {
		sum += b.Revenue
	}
	assert.InDelta(t, WindowRevenue(orders, testNow), sum, 0.001)
}
