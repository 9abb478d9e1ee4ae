package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending transfer with items", func(t *testing.T) {
		env := newTestEnv(t)
		resp, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      uuid.New(),
			DestinationLocationID: uuid.New(),
			Items: []TransferItemRequest{
				{ProductID: uuid.New(), Quantity: 5},
			},
		}, env.actor)
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Contains(t, resp.TransferNumber, "TRF-")
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(5), resp.Items[0].QuantityRequested)
	})

	t.Run("rejects identical source and destination", func(t *testing.T) {
		env := newTestEnv(t)
		loc := uuid.New()
		_, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      loc,
			DestinationLocationID: loc,
			Items:                 []TransferItemRequest{{ProductID: uuid.New(), Quantity: 1}},
		}, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidLocationPair))
	})

	t.Run("rejects a transfer without items", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      uuid.New(),
			DestinationLocationID: uuid.New(),
		}, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestTransferServiceShipAndReceive(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, *TransferResponse, uuid.UUID, uuid.UUID) {
		t.Helper()
		env := newTestEnv(t)
		source := env.seedRecord(t, 20, 0, strategy.CostMethodAverage)
		source.AverageCost = decimal.NewFromInt(4)

		transfer, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      source.LocationID,
			DestinationLocationID: uuid.New(),
			Items: []TransferItemRequest{
				{ProductID: source.ProductID, Quantity: 8},
			},
		}, env.actor)
		require.NoError(t, err)
		return env, transfer, source.ID, source.ProductID
	}

	t.Run("ship removes stock from the source and marks in transit", func(t *testing.T) {
		env, transfer, sourceRecordID, _ := setup(t)

		shipped, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)

		assert.Equal(t, "shipped", shipped.Status)
		require.NotNil(t, shipped.OutboundTransactionID)
		assert.Equal(t, int64(8), shipped.Items[0].QuantityShipped)
		assert.Equal(t, int64(12), env.storedRecord(t, sourceRecordID).QuantityOnHand)

		// the outbound leg is a committed transaction referencing the transfer
		outbound, err := env.txs.Get(ctx, env.tenantID, *shipped.OutboundTransactionID)
		require.NoError(t, err)
		assert.Equal(t, "completed", outbound.Status)
		assert.Equal(t, "transfer", outbound.ReferenceType)
		assert.Equal(t, transfer.TransferNumber, outbound.ReferenceID)
	})

	t.Run("receive adds stock at the destination valued at the source cost", func(t *testing.T) {
		env, transfer, _, productID := setup(t)
		_, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)

		received, err := env.transfers.Receive(ctx, env.tenantID, transfer.ID, nil, env.actor)
		require.NoError(t, err)

		assert.Equal(t, "received", received.Status)
		assert.False(t, received.HasDiscrepancy)
		require.NotNil(t, received.InboundTransactionID)

		level, err := env.ledger.GetStockLevel(ctx, env.tenantID, productID, nil, transfer.DestinationLocationID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), level.QuantityOnHand)
		assert.True(t, level.AverageCost.Equal(decimal.NewFromInt(4)), "got %s", level.AverageCost)
	})

	t.Run("short receipt keeps the shortfall visible as a discrepancy", func(t *testing.T) {
		env, transfer, _, productID := setup(t)
		shipped, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)

		received, err := env.transfers.Receive(ctx, env.tenantID, transfer.ID, &ReceiveTransferRequest{
			ReceivedQuantities: map[uuid.UUID]int64{
				shipped.Items[0].ID: 6,
			},
		}, env.actor)
		require.NoError(t, err)

		assert.True(t, received.HasDiscrepancy)
		assert.Equal(t, int64(2), received.Items[0].Discrepancy)

		level, err := env.ledger.GetStockLevel(ctx, env.tenantID, productID, nil, transfer.DestinationLocationID)
		require.NoError(t, err)
		assert.Equal(t, int64(6), level.QuantityOnHand)
	})

	t.Run("receiving more than shipped is rejected before anything moves", func(t *testing.T) {
		env, transfer, _, productID := setup(t)
		shipped, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)

		_, err = env.transfers.Receive(ctx, env.tenantID, transfer.ID, &ReceiveTransferRequest{
			ReceivedQuantities: map[uuid.UUID]int64{
				shipped.Items[0].ID: 9,
			},
		}, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		_, err = env.ledger.GetStockLevel(ctx, env.tenantID, productID, nil, transfer.DestinationLocationID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("ship with insufficient source stock leaves the transfer pending", func(t *testing.T) {
		env := newTestEnv(t)
		source := env.seedRecord(t, 3, 0, strategy.CostMethodAverage)

		transfer, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      source.LocationID,
			DestinationLocationID: uuid.New(),
			Items: []TransferItemRequest{
				{ProductID: source.ProductID, Quantity: 8},
			},
		}, env.actor)
		require.NoError(t, err)

		_, err = env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

		current, err := env.transfers.Get(ctx, env.tenantID, transfer.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", current.Status)
		assert.Equal(t, int64(3), env.storedRecord(t, source.ID).QuantityOnHand)
	})

	t.Run("second ship attempt commits nothing", func(t *testing.T) {
		env, transfer, sourceRecordID, _ := setup(t)

		_, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)
		_, err = env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))

		// exactly one outbound leg was applied
		assert.Equal(t, int64(12), env.storedRecord(t, sourceRecordID).QuantityOnHand)
		assert.Len(t, env.store.movements, 1)
		outbound := 0
		for _, tx := range env.store.transactions {
			if tx.MovementType == inventory.MovementTypeTransferOut {
				outbound++
			}
		}
		assert.Equal(t, 1, outbound)
	})

	t.Run("second receive attempt commits nothing", func(t *testing.T) {
		env, transfer, _, productID := setup(t)
		_, err := env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)
		_, err = env.transfers.Receive(ctx, env.tenantID, transfer.ID, nil, env.actor)
		require.NoError(t, err)

		_, err = env.transfers.Receive(ctx, env.tenantID, transfer.ID, nil, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))

		level, err := env.ledger.GetStockLevel(ctx, env.tenantID, productID, nil, transfer.DestinationLocationID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), level.QuantityOnHand)
	})

	t.Run("receive before ship is rejected", func(t *testing.T) {
		env, transfer, _, _ := setup(t)
		_, err := env.transfers.Receive(ctx, env.tenantID, transfer.ID, nil, env.actor)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestTransferServiceCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending transfer", func(t *testing.T) {
		env := newTestEnv(t)
		transfer, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      uuid.New(),
			DestinationLocationID: uuid.New(),
			Items:                 []TransferItemRequest{{ProductID: uuid.New(), Quantity: 2}},
		}, env.actor)
		require.NoError(t, err)

		resp, err := env.transfers.Cancel(ctx, env.tenantID, transfer.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
	})

	t.Run("shipped transfer cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		source := env.seedRecord(t, 10, 0, strategy.CostMethodAverage)
		transfer, err := env.transfers.Create(ctx, env.tenantID, &CreateTransferRequest{
			SourceLocationID:      source.LocationID,
			DestinationLocationID: uuid.New(),
			Items:                 []TransferItemRequest{{ProductID: source.ProductID, Quantity: 2}},
		}, env.actor)
		require.NoError(t, err)
		_, err = env.transfers.Ship(ctx, env.tenantID, transfer.ID, env.actor)
		require.NoError(t, err)

		_, err = env.transfers.Cancel(ctx, env.tenantID, transfer.ID)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
