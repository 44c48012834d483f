package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryFixture() (*InventoryService, *fakeMedicines, *countingReportCache) {
	accounts := newFakeAccounts(
		pharmacist("p1", "10001"),
		pharmacist("p2", "20002"),
		customer("c1", "10001"),
		customer("c2", ""),
	)
	meds := newFakeMedicines(
		medicine("m1", "p1", "Paracetamol 500mg", 40, 2.5),
		medicine("m2", "p2", "Paracetamol 650mg", 40, 3),
		medicine("m3", "p1", "Ibuprofen", 0, 4),
	)
	reports := newCountingReportCache()
	svc := NewInventoryService(meds, accounts, newFakeSnapshots(), reports, nil, fixedClock)
	return svc, meds, reports
}

func TestInventorySearchMatchesPostalArea(t *testing.T) {
	svc, _, _ := newInventoryFixture()

	results, err := svc.Search(context.Background(), "c1", "PARA")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].MedicineID)
	assert.Equal(t, "Pharmacy p1", results[0].PharmacyName)
}

func TestInventorySearchNoMatchesIsEmpty(t *testing.T) {
	svc, _, _ := newInventoryFixture()

	results, err := svc.Search(context.Background(), "c1", "ibuprofen")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestInventorySearchRequiresQueryAndPostalCode(t *testing.T) {
	svc, _, _ := newInventoryFixture()
	ctx := context.Background()

	_, err := svc.Search(ctx, "c1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Search(ctx, "c2", "para")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInventoryGetChecksOwner(t *testing.T) {
	svc, _, _ := newInventoryFixture()
	ctx := context.Background()

	_, err := svc.Get(ctx, "p2", "m1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(ctx, "p1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryCreate(t *testing.T) {
	svc, _, reports := newInventoryFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, "p1", MedicineInput{
		Name:        " Amoxicillin ",
		BatchNumber: "AMX-1",
		Stock:       20,
		Price:       12,
		ExpiryDate:  testNow.AddDate(0, 6, 0),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Amoxicillin", created.Name)
	assert.Equal(t, domain.DefaultReorderLevel, created.ReorderLevel)
	assert.Contains(t, reports.invalidated, "p1")

	_, err = svc.Create(ctx, "p1", MedicineInput{Name: "Dup", BatchNumber: "AMX-1", Stock: 1, Price: 1, ExpiryDate: testNow})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInventoryCreateValidation(t *testing.T) {
	svc, _, _ := newInventoryFixture()
	valid := MedicineInput{Name: "A", BatchNumber: "B", Stock: 1, Price: 1, ExpiryDate: testNow}

	cases := map[string]func(*MedicineInput){
		"missing name":     func(in *MedicineInput) { in.Name = "" },
		"missing batch":    func(in *MedicineInput) { in.BatchNumber = " " },
		"negative stock":   func(in *MedicineInput) { in.Stock = -1 },
		"zero price":       func(in *MedicineInput) { in.Price = 0 },
		"no expiry":        func(in *MedicineInput) { in.ExpiryDate = time.Time{} },
		"negative reorder": func(in *MedicineInput) { level := -1; in.ReorderLevel = &level },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.Create(context.Background(), "p1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestInventoryUpdateAndDelete(t *testing.T) {
	svc, meds, _ := newInventoryFixture()
	ctx := context.Background()

	stock := 3
	updated, err := svc.Update(ctx, "p1", "m1", MedicineUpdate{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, 3, meds.stock("m1"))

	_, err = svc.Update(ctx, "p2", "m1", MedicineUpdate{Stock: &stock})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, "p2", "m1"), domain.ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, "p1", "m1"))
}

func TestInventoryLowStockListsOutOfStockFirst(t *testing.T) {
	svc, _, _ := newInventoryFixture()

	low, err := svc.LowStock(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "m3", low[0].ID)
	assert.True(t, low[0].OutOfStock)
}
