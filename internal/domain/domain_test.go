package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberOrZero(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 3, 3},
		{"int64", int64(7), 7},
		{"int32", int32(2), 2},
		{"numeric string", " 42.10 ", 42.10},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"json number", json.Number("9.99"), 9.99},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"bool", true, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, NumberOrZero(tc.in), 1e-9)
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransitionTo(OrderProcessing))
	assert.True(t, OrderPending.CanTransitionTo(OrderCancelled))
	assert.False(t, OrderPending.CanTransitionTo(OrderCompleted))
	assert.True(t, OrderProcessing.CanTransitionTo(OrderDelivered))
	assert.True(t, OrderProcessing.CanTransitionTo(OrderCompleted))
	assert.False(t, OrderCompleted.CanTransitionTo(OrderCancelled))

	assert.True(t, OrderCompleted.IsTerminal())
	assert.True(t, OrderDelivered.IsTerminal())
	assert.False(t, OrderProcessing.IsTerminal())

	assert.True(t, OrderCompleted.IsRevenue())
	assert.True(t, OrderDelivered.IsRevenue())
	assert.False(t, OrderPending.IsRevenue())
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := ParseOrderStatus(" Delivered ")
	assert.True(t, ok)
	assert.Equal(t, OrderDelivered, status)

	_, ok = ParseOrderStatus("shipped")
	assert.False(t, ok)
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("")
	assert.True(t, ok)
	assert.Equal(t, PaymentCOD, m)

	m, ok = ParsePaymentMethod("UPI")
	assert.True(t, ok)
	assert.Equal(t, PaymentUPI, m)

	_, ok = ParsePaymentMethod("bitcoin")
	assert.False(t, ok)
}

func TestMedicineCategoryOrDefault(t *testing.T) {
	assert.Equal(t, "Other", Medicine{}.CategoryOrDefault())
	assert.Equal(t, "Other", Medicine{Category: "   "}.CategoryOrDefault())
	assert.Equal(t, "Antibiotic", Medicine{Category: "Antibiotic"}.CategoryOrDefault())
}
