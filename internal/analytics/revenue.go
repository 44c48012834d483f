package analytics

import (
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// RevenueWindowDays is the length of the trailing daily revenue series
const RevenueWindowDays = 7

type revenueBucket struct {
	start, end time.Time
	revenue    decimal.Decimal
	orders     int
}

// dayWindows returns the [start, end] bounds of the trailing days, oldest first.
// Day boundaries are midnights in now's location; end is the last millisecond of the day.
func dayWindows(now time.Time, days int) []revenueBucket {
	y, m, d := now.Date()
	loc := now.Location()

	buckets := make([]revenueBucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := time.Date(y, m, d-i, 0, 0, 0, 0, loc)
		next := time.Date(y, m, d-i+1, 0, 0, 0, 0, loc)
		buckets = append(buckets, revenueBucket{
			start: start,
			end:   next.Add(-time.Millisecond),
		})
	}
	return buckets
}

// DailyRevenue buckets completed and delivered orders into the last seven days.
// An order with an unusable total still counts towards the bucket's order count
// and contributes 0 revenue.
func DailyRevenue(orders []domain.Order, now time.Time) []domain.DailyRevenue {
	buckets := dayWindows(now, RevenueWindowDays)

	for _, o := range orders {
		if !o.Status.IsRevenue() {
			continue
		}
		for i := range buckets {
			b := &buckets[i]
			if o.CreatedAt.Before(b.start) || o.CreatedAt.After(b.end) {
				continue
			}
			b.revenue = b.revenue.Add(decimal.NewFromFloat(o.Total))
			b.orders++
			break
		}
	}

	series := make([]domain.DailyRevenue, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, domain.DailyRevenue{
			Date:    b.start,
			Revenue: toMoney(b.revenue),
			Orders:  b.orders,
		})
	}
	return series
}

// WindowRevenue sums completed and delivered order totals created inside the trailing window.
func WindowRevenue(orders []domain.Order, now time.Time) float64 {
	buckets := dayWindows(now, RevenueWindowDays)
	from, to := buckets[0].start, buckets[len(buckets)-1].end

	total := decimal.Zero
	for _, o := range orders {
		if !o.Status.IsRevenue() || o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(o.Total))
	}
	return toMoney(total)
}
