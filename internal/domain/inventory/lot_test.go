package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLot(t *testing.T, quantity int64, cost float64) *Lot {
	t.Helper()
	lot, err := NewLot(uuid.New(), uuid.New(), "LOT-001", quantity, decimal.NewFromFloat(cost), time.Now(), nil)
	require.NoError(t, err)
	return lot
}

func TestNewLot(t *testing.T) {
	t.Run("received and available start equal", func(t *testing.T) {
		lot := createTestLot(t, 40, 1.25)

		assert.Equal(t, int64(40), lot.QuantityReceived)
		assert.Equal(t, int64(40), lot.QuantityAvailable)
		assert.Equal(t, LotStatusActive, lot.Status)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewLot(uuid.New(), uuid.New(), "", 10, decimal.NewFromInt(1), time.Now(), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		_, err = NewLot(uuid.New(), uuid.New(), "LOT-1", 0, decimal.NewFromInt(1), time.Now(), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		_, err = NewLot(uuid.New(), uuid.New(), "LOT-1", 10, decimal.NewFromInt(-1), time.Now(), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestLotConsume(t *testing.T) {
	t.Run("partial consume keeps received fixed", func(t *testing.T) {
		lot := createTestLot(t, 40, 2)

		taken := lot.Consume(15)

		assert.Equal(t, int64(15), taken)
		assert.Equal(t, int64(25), lot.QuantityAvailable)
		assert.Equal(t, int64(40), lot.QuantityReceived)
	})

	t.Run("consume caps at available", func(t *testing.T) {
		lot := createTestLot(t, 10, 2)

		taken := lot.Consume(25)

		assert.Equal(t, int64(10), taken)
		assert.Equal(t, int64(0), lot.QuantityAvailable)
		assert.False(t, lot.IsConsumable())
	})

	t.Run("quarantined lot yields nothing", func(t *testing.T) {
		lot := createTestLot(t, 10, 2)
		require.NoError(t, lot.Quarantine())

		assert.Equal(t, int64(0), lot.Consume(5))
	})

	t.Run("restore caps at received", func(t *testing.T) {
		lot := createTestLot(t, 10, 2)
		lot.Consume(6)

		lot.Restore(100)

		assert.Equal(t, int64(10), lot.QuantityAvailable)
	})
}

func TestLotStatusTransitions(t *testing.T) {
	t.Run("quarantine and release", func(t *testing.T) {
		lot := createTestLot(t, 10, 1)
		require.NoError(t, lot.Quarantine())
		assert.Equal(t, LotStatusQuarantine, lot.Status)

		require.NoError(t, lot.ReleaseQuarantine())
		assert.Equal(t, LotStatusActive, lot.Status)
	})

	t.Run("dispose zeroes availability", func(t *testing.T) {
		lot := createTestLot(t, 10, 1)
		require.NoError(t, lot.Dispose())

		assert.Equal(t, LotStatusDisposed, lot.Status)
		assert.Equal(t, int64(0), lot.QuantityAvailable)
		assert.True(t, errors.Is(lot.Dispose(), shared.ErrInvalidState))
	})

	t.Run("expiry detection", func(t *testing.T) {
		expiry := time.Now().Add(-time.Hour)
		lot, err := NewLot(uuid.New(), uuid.New(), "LOT-EXP", 5, decimal.NewFromInt(1), time.Now().Add(-48*time.Hour), &expiry)
		require.NoError(t, err)

		assert.True(t, lot.IsExpired(time.Now()))
		require.NoError(t, lot.MarkExpired())
		assert.Equal(t, LotStatusExpired, lot.Status)
	})
}
