package emi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"estate-listing-backend/internal/emi"
)

func TestCalculate_KnownValue(t *testing.T) {
	// 1 lakh at 12% over a year is the textbook case.
	b, err := emi.Calculate(100000, 12, 12)

	assert.NoError(t, err)
	assert.InDelta(t, 8884.88, b.Monthly, 0.01)
	assert.InDelta(t, b.Monthly*12, b.TotalPayable, 0.01)
	assert.InDelta(t, b.TotalPayable-100000, b.TotalInterest, 0.01)
}

func TestCalculate_ZeroRate(t *testing.T) {
	b, err := emi.Calculate(120000, 0, 12)

	assert.NoError(t, err)
	assert.Equal(t, 10000.0, b.Monthly)
	assert.Equal(t, 0.0, b.TotalInterest)
	assert.Equal(t, 120000.0, b.TotalPayable)
}

func TestCalculate_InvalidInputs(t *testing.T) {
	_, err := emi.Calculate(0, 8, 12)
	assert.ErrorIs(t, err, emi.ErrPrincipal)

	_, err = emi.Calculate(100000, -1, 12)
	assert.ErrorIs(t, err, emi.ErrRate)

	_, err = emi.Calculate(100000, 8, 0)
	assert.ErrorIs(t, err, emi.ErrTenure)
}

func TestSchedule_BalanceClosesAtZero(t *testing.T) {
	rows, err := emi.Schedule(500000, 9, 24)

	assert.NoError(t, err)
	assert.Len(t, rows, 24)
	assert.Equal(t, 1, rows[0].Month)
	assert.Equal(t, 0.0, rows[len(rows)-1].Balance)

	// Balances are strictly decreasing.
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i].Balance, rows[i-1].Balance)
	}
}

func TestSchedule_ZeroRate(t *testing.T) {
	rows, err := emi.Schedule(3000, 0, 3)

	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, 1000.0, row.Principal)
		assert.Equal(t, 0.0, row.Interest)
	}
	assert.Equal(t, 0.0, rows[2].Balance)
}
