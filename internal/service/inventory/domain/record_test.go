package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(available, reserved int) *Record {
	return &Record{
		ID:          "inv-1",
		ProductID:   "prod-77",
		WarehouseID: "bodega-3",
		Available:   available,
		Reserved:    reserved,
	}
}

func TestReserveMovesStock(t *testing.T) {
	rec := newRecord(50, 0)
	now := time.Now()

	require.NoError(t, rec.Reserve(30, now))

	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestReserveInsufficientLeavesRecordUntouched(t *testing.T) {
	rec := newRecord(50, 10)

	err := rec.Reserve(51, time.Now())

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 50, rec.Available)
	assert.Equal(t, 10, rec.Reserved)
	assert.True(t, rec.UpdatedAt.IsZero())
}

func TestReserveExactAvailable(t *testing.T) {
	rec := newRecord(50, 0)

	require.NoError(t, rec.Reserve(50, time.Now()))

	assert.Equal(t, 0, rec.Available)
	assert.Equal(t, 50, rec.Reserved)
}

func TestReleaseRoundTrip(t *testing.T) {
	rec := newRecord(50, 0)
	now := time.Now()

	require.NoError(t, rec.Reserve(30, now))
	require.NoError(t, rec.Release(30, now))

	assert.Equal(t, 50, rec.Available)
	assert.Equal(t, 0, rec.Reserved)
}

func TestReleaseMoreThanReserved(t *testing.T) {
	rec := newRecord(20, 30)

	err := rec.Release(31, time.Now())

	assert.ErrorIs(t, err, ErrOverRelease)
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)
}

func TestConfirmIsPermanent(t *testing.T) {
	rec := newRecord(20, 30)

	require.NoError(t, rec.Confirm(30, time.Now()))

	// 确认出库的件数不回到可用池
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 0, rec.Reserved)
}

func TestConfirmMoreThanReserved(t *testing.T) {
	rec := newRecord(20, 30)

	err := rec.Confirm(31, time.Now())

	assert.ErrorIs(t, err, ErrOverConfirm)
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)
}

func TestNonPositiveQuantities(t *testing.T) {
	rec := newRecord(50, 10)
	now := time.Now()

	for _, qty := range []int{0, -1, -50} {
		assert.ErrorIs(t, rec.Reserve(qty, now), ErrInvalidQuantity)
		assert.ErrorIs(t, rec.Release(qty, now), ErrInvalidQuantity)
		assert.ErrorIs(t, rec.Confirm(qty, now), ErrInvalidQuantity)
	}
	assert.Equal(t, 50, rec.Available)
	assert.Equal(t, 10, rec.Reserved)
}

func TestFullLifecycle(t *testing.T) {
	rec := newRecord(50, 0)
	now := time.Now()

	require.NoError(t, rec.Reserve(30, now))
	assert.Equal(t, 20, rec.Available)
	assert.Equal(t, 30, rec.Reserved)

	require.NoError(t, rec.Release(10, now))
	assert.Equal(t, 30, rec.Available)
	assert.Equal(t, 20, rec.Reserved)

	require.NoError(t, rec.Confirm(20, now))
	assert.Equal(t, 30, rec.Available)
	assert.Equal(t, 0, rec.Reserved)
}
