package analytics

import (
	"fmt"
	"testing"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string, qty, price float64) domain.LineItem {
	return domain.LineItem{Name: name, Quantity: qty, Price: price}
}

func TestTopSellersFoldsEligibleOrders(t *testing.T) {
	orders := []domain.Order{
		order("1", domain.OrderCompleted, 0, testNow, item("Paracetamol", 2, 10), item("Ibuprofen", 1, 25.5)),
		order("2", domain.OrderDelivered, 0, testNow, item("Paracetamol", 3, 10)),
		order("3", domain.OrderPending, 0, testNow, item("Insulin", 10, 500)),
		order("4", domain.OrderCompleted, 0, testNow, item("", 4, 100), item("   ", 1, 1)),
	}

	top := TopSellers(orders, 5)

	require.Len(t, top, 2)
	assert.Equal(t, domain.TopMedicine{Name: "Paracetamol", TotalSold: 5, Revenue: 50}, top[0])
	assert.Equal(t, domain.TopMedicine{Name: "Ibuprofen", TotalSold: 1, Revenue: 25.5}, top[1])
}

func TestTopSellersCoercedQuantityContributesNothing(t *testing.T) {
	// "abc" was coerced to 0 when the order was read
	bad := domain.LineItem{Name: "Paracetamol", Quantity: domain.NumberOrZero("abc"), Price: 10}
	orders := []domain.Order{order("1", domain.OrderCompleted, 10, testNow, bad)}

	top := TopSellers(orders, 5)

	require.Len(t, top, 1)
	assert.Equal(t, 0.0, top[0].TotalSold)
	assert.Equal(t, 0.0, top[0].Revenue)
}

func TestTopSellersLimitAndOrdering(t *testing.T) {
	var items []domain.LineItem
	for i := 0; i < 8; i++ {
		items = append(items, item(fmt.Sprintf("med-%d", i), 1, float64(i%4)*10))
	}
	top := TopSellers([]domain.Order{order("1", domain.OrderCompleted, 0, testNow, items...)}, 5)

	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Revenue, top[i].Revenue)
	}
	// equal revenue breaks ties by name
	assert.Equal(t, "med-3", top[0].Name)
	assert.Equal(t, "med-7", top[1].Name)
	assert.Equal(t, "med-2", top[2].Name)
	assert.Equal(t, "med-6", top[3].Name)
	assert.Equal(t, "med-1", top[4].Name)
}

func TestTopSellersRoundsRevenue(t *testing.T) {
	top := TopSellers([]domain.Order{
		order("1", domain.OrderCompleted, 0, testNow, item("Syrup", 3, 3.333)),
	}, 0)

	require.Len(t, top, 1)
	assert.Equal(t, 10.0, top[0].Revenue)
}
