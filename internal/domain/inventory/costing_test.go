package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLotEntries(t *testing.T) []strategy.LotEntry {
	t.Helper()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	recordID := uuid.New()
	tenantID := uuid.New()

	lots := make([]*Lot, 0, 3)
	for i, spec := range []struct {
		number string
		qty    int64
		cost   float64
	}{
		{"LOT-A", 10, 1.00},
		{"LOT-B", 10, 2.00},
		{"LOT-C", 10, 3.00},
	} {
		lot, err := NewLot(tenantID, recordID, spec.number, spec.qty, decimal.NewFromFloat(spec.cost), base.AddDate(0, 0, i), nil)
		require.NoError(t, err)
		lots = append(lots, lot)
	}
	return LotEntries(lots)
}

func TestFIFOCostStrategy(t *testing.T) {
	fifo := NewFIFOCostStrategy()

	t.Run("consumes oldest lots first", func(t *testing.T) {
		result, err := fifo.CostOutbound(15, decimal.Zero, testLotEntries(t))
		require.NoError(t, err)

		// 10 @ 1.00 + 5 @ 2.00 = 20.00
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(20)), "got %s", result.TotalCost)
		require.Len(t, result.Consumed, 2)
		assert.Equal(t, "LOT-A", result.Consumed[0].LotNumber)
		assert.Equal(t, int64(10), result.Consumed[0].Quantity)
		assert.Equal(t, "LOT-B", result.Consumed[1].LotNumber)
		assert.Equal(t, int64(5), result.Consumed[1].Quantity)
	})

	t.Run("partial lot keeps original unit cost", func(t *testing.T) {
		result, err := fifo.CostOutbound(12, decimal.Zero, testLotEntries(t))
		require.NoError(t, err)
		assert.True(t, result.Consumed[1].UnitCost.Equal(decimal.NewFromInt(2)))
	})

	t.Run("insufficient lots rejected", func(t *testing.T) {
		_, err := fifo.CostOutbound(31, decimal.Zero, testLotEntries(t))
		assert.True(t, errors.Is(err, shared.ErrInsufficientLots))
	})
}

func TestLIFOCostStrategy(t *testing.T) {
	lifo := NewLIFOCostStrategy()

	t.Run("consumes newest lots first", func(t *testing.T) {
		result, err := lifo.CostOutbound(15, decimal.Zero, testLotEntries(t))
		require.NoError(t, err)

		// 10 @ 3.00 + 5 @ 2.00 = 40.00
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(40)), "got %s", result.TotalCost)
		require.Len(t, result.Consumed, 2)
		assert.Equal(t, "LOT-C", result.Consumed[0].LotNumber)
		assert.Equal(t, "LOT-B", result.Consumed[1].LotNumber)
	})
}

func TestAverageCostStrategy(t *testing.T) {
	avg := NewAverageCostStrategy()

	t.Run("uses rolling average, ignores lots", func(t *testing.T) {
		result, err := avg.CostOutbound(6, decimal.NewFromFloat(2.5), nil)
		require.NoError(t, err)

		assert.True(t, result.UnitCost.Equal(decimal.NewFromFloat(2.5)))
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(15)))
		assert.Empty(t, result.Consumed)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := avg.CostOutbound(0, decimal.NewFromInt(1), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestLotEntriesView(t *testing.T) {
	t.Run("skips non-consumable lots and sorts by received date", func(t *testing.T) {
		recordID := uuid.New()
		tenantID := uuid.New()
		newer, err := NewLot(tenantID, recordID, "NEW", 5, decimal.NewFromInt(2), time.Now(), nil)
		require.NoError(t, err)
		older, err := NewLot(tenantID, recordID, "OLD", 5, decimal.NewFromInt(1), time.Now().Add(-24*time.Hour), nil)
		require.NoError(t, err)
		quarantined, err := NewLot(tenantID, recordID, "QUAR", 5, decimal.NewFromInt(9), time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, quarantined.Quarantine())

		entries := LotEntries([]*Lot{newer, quarantined, older})

		require.Len(t, entries, 2)
		assert.Equal(t, "OLD", entries[0].LotNumber)
		assert.Equal(t, "NEW", entries[1].LotNumber)
	})
}

func TestNewCostStrategy(t *testing.T) {
	tests := []struct {
		method strategy.CostMethod
		want   strategy.CostMethod
	}{
		{strategy.CostMethodAverage, strategy.CostMethodAverage},
		{strategy.CostMethodFIFO, strategy.CostMethodFIFO},
		{strategy.CostMethodLIFO, strategy.CostMethodLIFO},
		{strategy.CostMethodSpecific, strategy.CostMethodFIFO},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			s, err := NewCostStrategy(tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Method())
		})
	}

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := NewCostStrategy(strategy.CostMethod("bogus"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}
