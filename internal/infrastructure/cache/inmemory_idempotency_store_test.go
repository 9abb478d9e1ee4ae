package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins, repeats are duplicates", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "stock.low:rec-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "stock.low:rec-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired marks can be claimed again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "stock.low:rec-2", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "stock.low:rec-2", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("IsProcessed tracks live marks only", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)

		_, err = store.MarkProcessed(ctx, "stock.low:rec-3", time.Hour)
		require.NoError(t, err)
		processed, err = store.IsProcessed(ctx, "stock.low:rec-3")
		require.NoError(t, err)
		assert.True(t, processed)

		_, err = store.MarkProcessed(ctx, "stock.low:rec-4", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
		processed, err = store.IsProcessed(ctx, "stock.low:rec-4")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("cleanup drops expired marks and keeps live ones", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, _ = store.MarkProcessed(ctx, "gone-1", 10*time.Millisecond)
		_, _ = store.MarkProcessed(ctx, "gone-2", 10*time.Millisecond)
		_, _ = store.MarkProcessed(ctx, "kept", time.Hour)
		require.Equal(t, 3, store.Size())

		time.Sleep(20 * time.Millisecond)
		store.cleanup()

		assert.Equal(t, 1, store.Size())
		processed, err := store.IsProcessed(ctx, "kept")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("size counts one entry per key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, _ = store.MarkProcessed(ctx, "a", time.Hour)
		_, _ = store.MarkProcessed(ctx, "b", time.Hour)
		_, _ = store.MarkProcessed(ctx, "a", time.Hour)

		assert.Equal(t, 2, store.Size())
	})

	t.Run("concurrent marks elect a single winner", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		const attempts = 100
		results := make(chan bool, attempts)
		for i := 0; i < attempts; i++ {
			go func() {
				isNew, err := store.MarkProcessed(ctx, "contended", time.Hour)
				results <- err == nil && isNew
			}()
		}

		winners := 0
		for i := 0; i < attempts; i++ {
			if <-results {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()

		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}
