package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs were already handled so a
// redelivered event is processed once.
type IdempotencyStore interface {
	// MarkProcessed claims an event ID for the given TTL. It reports true
	// when this call was the first claim.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an unexpired claim exists
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers
type IdempotencyConfig struct {
	// TTL bounds how long an event ID stays claimed. After it expires the
	// same ID would be handled again.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig suppresses duplicates for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
