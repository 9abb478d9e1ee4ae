package inventory

import (
	"errors"
	"testing"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTransaction(t *testing.T, movementType MovementType) *InventoryTransaction {
	t.Helper()
	tx, err := NewInventoryTransaction(uuid.New(), movementType, nil, nil, uuid.New(), "")
	require.NoError(t, err)
	return tx
}

func TestNewInventoryTransaction(t *testing.T) {
	t.Run("starts pending with a transaction number", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)

		assert.Equal(t, TransactionStatusPending, tx.Status)
		assert.NotEmpty(t, tx.TransactionNumber)
		assert.Contains(t, tx.TransactionNumber, "TXN-")
		assert.Empty(t, tx.Items)
	})

	t.Run("transfer requires distinct locations", func(t *testing.T) {
		loc := uuid.New()
		_, err := NewInventoryTransaction(uuid.New(), MovementTypeTransferOut, &loc, &loc, uuid.New(), "")
		assert.True(t, errors.Is(err, shared.ErrInvalidLocationPair))
	})

	t.Run("transfer requires both locations", func(t *testing.T) {
		loc := uuid.New()
		_, err := NewInventoryTransaction(uuid.New(), MovementTypeTransferIn, &loc, nil, uuid.New(), "")
		assert.True(t, errors.Is(err, shared.ErrInvalidLocationPair))
	})

	t.Run("rejects unknown movement type", func(t *testing.T) {
		_, err := NewInventoryTransaction(uuid.New(), MovementType("bogus"), nil, nil, uuid.New(), "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestTransactionAddItem(t *testing.T) {
	t.Run("captures before snapshots at add time", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeOutbound)
		record := createTestStockRecord(t)
		require.NoError(t, record.ApplyDelta(50, 0))
		require.NoError(t, record.ApplyDelta(0, 20))

		item, err := tx.AddItem(record, 10, nil, "")
		require.NoError(t, err)

		assert.Equal(t, int64(50), item.QuantityBefore)
		assert.Equal(t, int64(20), item.ReservedBefore)
		assert.False(t, item.Completed)
		assert.Len(t, tx.Items, 1)
	})

	t.Run("snapshot does not track later record changes", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeOutbound)
		record := createTestStockRecord(t)
		require.NoError(t, record.ApplyDelta(50, 0))

		item, err := tx.AddItem(record, 10, nil, "")
		require.NoError(t, err)
		require.NoError(t, record.ApplyDelta(-30, 0))

		assert.Equal(t, int64(50), item.QuantityBefore)
	})

	t.Run("rejected outside pending", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)
		require.NoError(t, tx.Start())

		_, err := tx.AddItem(createTestStockRecord(t), 5, nil, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("negative quantity only for adjustments", func(t *testing.T) {
		outbound := createTestTransaction(t, MovementTypeOutbound)
		_, err := outbound.AddItem(createTestStockRecord(t), -5, nil, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		adjustment := createTestTransaction(t, MovementTypeAdjustment)
		_, err = adjustment.AddItem(createTestStockRecord(t), -5, nil, "")
		assert.NoError(t, err)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)
		_, err := tx.AddItem(createTestStockRecord(t), 0, nil, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestTransactionStatusMachine(t *testing.T) {
	t.Run("pending to in progress to completed", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)

		require.NoError(t, tx.Start())
		assert.Equal(t, TransactionStatusInProgress, tx.Status)
		assert.NotNil(t, tx.StartedAt)

		require.NoError(t, tx.Complete())
		assert.Equal(t, TransactionStatusCompleted, tx.Status)
		assert.NotNil(t, tx.CompletedAt)
		assert.True(t, tx.IsTerminal())
	})

	t.Run("failure records rollback reason", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeOutbound)
		require.NoError(t, tx.Start())

		require.NoError(t, tx.Fail("insufficient stock on line 2"))

		assert.Equal(t, TransactionStatusFailed, tx.Status)
		assert.Equal(t, "insufficient stock on line 2", tx.RollbackReason)
	})

	t.Run("cancel only from pending", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)
		require.NoError(t, tx.Cancel())
		assert.Equal(t, TransactionStatusCancelled, tx.Status)

		started := createTestTransaction(t, MovementTypeInbound)
		require.NoError(t, started.Start())
		assert.True(t, errors.Is(started.Cancel(), shared.ErrInvalidState))
	})

	t.Run("terminal statuses are immutable", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)
		require.NoError(t, tx.Start())
		require.NoError(t, tx.Complete())

		assert.True(t, errors.Is(tx.Start(), shared.ErrInvalidState))
		assert.True(t, errors.Is(tx.Cancel(), shared.ErrInvalidState))
		assert.True(t, errors.Is(tx.Fail("x"), shared.ErrInvalidState))
		_, err := tx.AddItem(createTestStockRecord(t), 1, nil, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("rolled back from in progress", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeAdjustment)
		require.NoError(t, tx.Start())
		require.NoError(t, tx.MarkRolledBack("operator abort"))
		assert.Equal(t, TransactionStatusRolledBack, tx.Status)
	})
}

func TestTransactionEvents(t *testing.T) {
	t.Run("complete raises committed event", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeInbound)
		record := createTestStockRecord(t)
		cost := decimal.NewFromInt(2)
		_, err := tx.AddItem(record, 5, &cost, "")
		require.NoError(t, err)
		require.NoError(t, tx.Start())
		require.NoError(t, tx.Complete())

		events := tx.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransactionCommitted, events[0].EventType())

		committed, ok := events[0].(*TransactionCommittedEvent)
		require.True(t, ok)
		assert.Equal(t, 1, committed.ItemCount)
		assert.Equal(t, tx.TransactionNumber, committed.TransactionNumber)
	})

	t.Run("fail raises failed event", func(t *testing.T) {
		tx := createTestTransaction(t, MovementTypeOutbound)
		require.NoError(t, tx.Start())
		require.NoError(t, tx.Fail("boom"))

		events := tx.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransactionFailed, events[0].EventType())
	})
}

func TestMovementTypeDeltas(t *testing.T) {
	tests := []struct {
		name         string
		movementType MovementType
		quantity     int64
		wantOnHand   int64
		wantReserved int64
	}{
		{"inbound", MovementTypeInbound, 10, 10, 0},
		{"outbound", MovementTypeOutbound, 10, -10, 0},
		{"transfer in", MovementTypeTransferIn, 4, 4, 0},
		{"transfer out", MovementTypeTransferOut, 4, -4, 0},
		{"adjustment keeps sign", MovementTypeAdjustment, -3, -3, 0},
		{"reservation", MovementTypeReservation, 7, 0, 7},
		{"release", MovementTypeRelease, 7, 0, -7},
		{"allocation", MovementTypeAllocation, 5, -5, -5},
		{"deallocation", MovementTypeDeallocation, 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			onHand, reserved := tt.movementType.Deltas(tt.quantity)
			assert.Equal(t, tt.wantOnHand, onHand)
			assert.Equal(t, tt.wantReserved, reserved)
		})
	}
}

func TestMovementLedgerReplay(t *testing.T) {
	// Replaying the ledger from zero must reproduce the record's counters.
	record := NewStockRecord(uuid.New(), uuid.New(), nil, uuid.New(), strategy.CostMethodAverage)
	actor := uuid.New()

	entries := make([]*MovementEntry, 0)
	apply := func(mt MovementType, qty int64) {
		onHand, reserved := mt.Deltas(qty)
		before := record.Snapshot()
		require.NoError(t, record.ApplyDelta(onHand, reserved))
		entries = append(entries, NewMovementEntry(record, mt, onHand, reserved, before, nil, "test", "T-1", "", "", actor))
	}

	apply(MovementTypeInbound, 100)
	apply(MovementTypeReservation, 30)
	apply(MovementTypeAllocation, 20)
	apply(MovementTypeRelease, 10)
	apply(MovementTypeOutbound, 15)
	apply(MovementTypeAdjustment, -5)

	var replayedOnHand, replayedReserved int64
	for _, entry := range entries {
		replayedOnHand += entry.QuantityChange
		replayedReserved += entry.ReservedChange
		assert.Equal(t, entry.QuantityBefore+entry.QuantityChange, entry.QuantityAfter)
		assert.Equal(t, entry.ReservedBefore+entry.ReservedChange, entry.ReservedAfter)
	}

	assert.Equal(t, record.QuantityOnHand, replayedOnHand)
	assert.Equal(t, record.QuantityReserved, replayedReserved)
}
