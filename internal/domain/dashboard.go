package domain

import "time"

// PharmacistStats holds the headline numbers of the analytics dashboard
type PharmacistStats struct {
	TotalOrders       int     `json:"totalOrders"`
	PendingOrders     int     `json:"pendingOrders"`
	ProcessingOrders  int     `json:"processingOrders"`
	CompletedOrders   int     `json:"completedOrders"`
	CancelledOrders   int     `json:"cancelledOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	WeeklyRevenue     float64 `json:"weeklyRevenue"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
	InventoryValue    float64 `json:"inventoryValue"`
	TotalMedicines    int     `json:"totalMedicines"`
	LowStockCount     int     `json:"lowStockCount"`
	ExpiringSoonCount int     `json:"expiringSoonCount"`
	ExpiredCount      int     `json:"expiredCount"`
}

// DailyRevenue is one day of the trailing revenue chart
type DailyRevenue struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
}

// TopMedicine is a best seller ranked by revenue
type TopMedicine struct {
	Name      string  `json:"name"`
	TotalSold float64 `json:"totalSold"`
	Revenue   float64 `json:"revenue"`
}

// CategoryStat aggregates the catalog for one category
type CategoryStat struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
}

// AnalyticsReport is the full pharmacist dashboard payload
type AnalyticsReport struct {
	Stats                PharmacistStats `json:"stats"`
	DailyRevenue         []DailyRevenue  `json:"dailyRevenue"`
	TopMedicines         []TopMedicine   `json:"topMedicines"`
	CategoryDistribution []CategoryStat  `json:"categoryDistribution"`
	RecentOrders         []Order         `json:"recentOrders"`
	GeneratedAt          time.Time       `json:"generatedAt"`
}

// MedicineAlert is a medicine annotated with its classification
type MedicineAlert struct {
	Medicine
	DaysUntilExpiry *int `json:"daysUntilExpiry,omitempty"`
	OutOfStock      bool `json:"outOfStock"`
}

// InventoryAlerts groups a catalog by alert label; a medicine may appear in several lists
type InventoryAlerts struct {
	LowStock     []MedicineAlert `json:"lowStock"`
	ExpiringSoon []MedicineAlert `json:"expiringSoon"`
	Expired      []MedicineAlert `json:"expired"`
}

// SearchResult flattens a medicine with its owning pharmacy for the customer search
type SearchResult struct {
	MedicineID     string    `json:"medicineId"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Manufacturer   string    `json:"manufacturer,omitempty"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	ExpiryDate     time.Time `json:"expiryDate"`
	PharmacistID   string    `json:"pharmacistId"`
	PharmacistName string    `json:"pharmacistName"`
	Phone          string    `json:"phone,omitempty"`
	PharmacyName   string    `json:"pharmacyName"`
	Address        string    `json:"address"`
	PostalCode     string    `json:"postalCode"`
	Rating         float64   `json:"rating"`
	LicenseNumber  string    `json:"licenseNumber"`
}

// AlertSnapshot is the daily record of a pharmacist's inventory alert counts
type AlertSnapshot struct {
	PharmacistID      string    `json:"pharmacistId" db:"pharmacist_id"`
	SnapshotDate      time.Time `json:"snapshotDate" db:"snapshot_date"`
	TotalMedicines    int       `json:"totalMedicines" db:"total_medicines"`
	LowStockCount     int       `json:"lowStockCount" db:"low_stock_count"`
	OutOfStockCount   int       `json:"outOfStockCount" db:"out_of_stock_count"`
	ExpiringSoonCount int       `json:"expiringSoonCount" db:"expiring_soon_count"`
	ExpiredCount      int       `json:"expiredCount" db:"expired_count"`
	InventoryValue    float64   `json:"inventoryValue" db:"inventory_value"`
}
