package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
)

// ExpiringSoonDays is the window in which a medicine counts as expiring soon
const ExpiringSoonDays = 30

const day = 24 * time.Hour

// Classification holds the additive alert labels of one medicine
type Classification struct {
	DaysUntilExpiry *int
	LowStock        bool
	OutOfStock      bool
	ExpiringSoon    bool
	Expired         bool
}

// DaysUntilExpiry returns ceil((expiry - now) / 1 day).
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(math.Ceil(float64(expiry.Sub(now)) / float64(day)))
}

// Classify labels a medicine relative to now. Labels are independent of each other:
// a medicine can be low on stock and expired at the same time. A medicine without
// an expiry date never gets an expiry label.
func Classify(m domain.Medicine, now time.Time) Classification {
	c := Classification{
		OutOfStock: m.Stock == 0,
		LowStock:   m.Stock == 0 || m.Stock <= m.ReorderLevel,
	}

	if m.ExpiryDate.IsZero() {
		return c
	}

	days := DaysUntilExpiry(m.ExpiryDate, now)
	c.DaysUntilExpiry = &days
	c.Expired = days < 0
	c.ExpiringSoon = days >= 0 && days <= ExpiringSoonDays
	return c
}

// Alerts classifies a catalog and groups it by label, preserving catalog order.
func Alerts(medicines []domain.Medicine, now time.Time) domain.InventoryAlerts {
	alerts := domain.InventoryAlerts{
		LowStock:     make([]domain.MedicineAlert, 0),
		ExpiringSoon: make([]domain.MedicineAlert, 0),
		Expired:      make([]domain.MedicineAlert, 0),
	}

	for _, m := range medicines {
		c := Classify(m, now)
		alert := domain.MedicineAlert{
			Medicine:        m,
			DaysUntilExpiry: c.DaysUntilExpiry,
			OutOfStock:      c.OutOfStock,
		}
		if c.LowStock {
			alerts.LowStock = append(alerts.LowStock, alert)
		}
		if c.ExpiringSoon {
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, alert)
		}
		if c.Expired {
			alerts.Expired = append(alerts.Expired, alert)
		}
	}

	return alerts
}

// LowStock returns low-stock medicines ordered by stock ascending, then name.
func LowStock(medicines []domain.Medicine, now time.Time) []domain.MedicineAlert {
	items := Alerts(medicines, now).LowStock
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// ExpiringSoon returns medicines expiring within the window ordered by expiry date ascending, then name.
func ExpiringSoon(medicines []domain.Medicine, now time.Time) []domain.MedicineAlert {
	items := Alerts(medicines, now).ExpiringSoon
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ExpiryDate.Equal(items[j].ExpiryDate) {
			return items[i].ExpiryDate.Before(items[j].ExpiryDate)
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// Snapshot condenses a catalog into the counts stored in the daily alert history.
func Snapshot(pharmacistID string, medicines []domain.Medicine, now time.Time) domain.AlertSnapshot {
	y, mo, d := now.Date()
	snap := domain.AlertSnapshot{
		PharmacistID:   pharmacistID,
		SnapshotDate:   time.Date(y, mo, d, 0, 0, 0, 0, now.Location()),
		TotalMedicines: len(medicines),
		InventoryValue: InventoryValue(medicines),
	}

	for _, m := range medicines {
		c := Classify(m, now)
		if c.LowStock {
			snap.LowStockCount++
		}
		if c.OutOfStock {
			snap.OutOfStockCount++
		}
		if c.ExpiringSoon {
			snap.ExpiringSoonCount++
		}
		if c.Expired {
			snap.ExpiredCount++
		}
	}

	return snap
}
