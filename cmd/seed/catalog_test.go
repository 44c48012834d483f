package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalogRow(t *testing.T) {
	index, err := columnIndex([]string{"Name", "batch_number", "category", "manufacturer", "stock", "reorder_level", "price", "expiry_date"})
	require.NoError(t, err)

	input, err := parseCatalogRow([]string{"Paracetamol 650mg", "PCM-1", "Pain Relief", "Acme", "150", "", "3.10", "2027-08-31"}, index)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 650mg", input.Name)
	assert.Equal(t, 150, input.Stock)
	assert.Equal(t, 3.10, input.Price)
	assert.Nil(t, input.ReorderLevel)
	assert.Equal(t, time.Date(2027, time.August, 31, 0, 0, 0, 0, time.UTC), input.ExpiryDate)

	input, err = parseCatalogRow([]string{"Zinc", "ZNC-1", "", "", "80", "15", "6.40", "2028-03-01"}, index)
	require.NoError(t, err)
	require.NotNil(t, input.ReorderLevel)
	assert.Equal(t, 15, *input.ReorderLevel)

	_, err = parseCatalogRow([]string{"Zinc", "ZNC-1", "", "", "many", "", "6.40", "2028-03-01"}, index)
	assert.Error(t, err)

	_, err = parseCatalogRow([]string{"Zinc", "ZNC-1", "", "", "1", "", "6.40", "03/01/2028"}, index)
	assert.Error(t, err)
}

func TestColumnIndexRequiresCoreColumns(t *testing.T) {
	_, err := columnIndex([]string{"name", "stock", "price"})
	assert.ErrorContains(t, err, "batch_number")
}

func TestRandomBasket(t *testing.T) {
	medicines := []domain.Medicine{
		{ID: "a", Name: "Paracetamol", Price: 2.5},
		{ID: "b", Name: "Ibuprofen", Price: 4.2, Category: "Pain Relief"},
	}
	items, total := randomBasket(rand.New(rand.NewSource(7)), medicines)
	require.NotEmpty(t, items)

	var sum float64
	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.MedicineID])
		seen[item.MedicineID] = true
		assert.NotEmpty(t, item.Category)
		sum += item.Quantity * item.Price
	}
	assert.InDelta(t, sum, total, 0.01)
}
