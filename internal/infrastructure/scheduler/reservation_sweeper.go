package scheduler

import (
	"context"
	"sync"
	"time"

	appinv "github.com/erp/inventory/internal/application/inventory"
	"go.uber.org/zap"
)

// ReservationExpirer reclaims stock held by expired reservations
type ReservationExpirer interface {
	ExpireReservations(ctx context.Context) (*appinv.ExpiredReservationStats, error)
}

// SweeperConfig holds configuration for the reservation sweeper
type SweeperConfig struct {
	// Interval is how often the sweep runs
	Interval time.Duration
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: 5 * time.Minute,
	}
}

// ReservationSweeper periodically releases expired reservations
type ReservationSweeper struct {
	config  SweeperConfig
	expirer ReservationExpirer
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReservationSweeper creates a new reservation sweeper
func NewReservationSweeper(config SweeperConfig, expirer ReservationExpirer, logger *zap.Logger) *ReservationSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	return &ReservationSweeper{
		config:  config,
		expirer: expirer,
		logger:  logger,
	}
}

// Start starts the sweep loop
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reservation sweeper started",
		zap.Duration("interval", s.config.Interval),
	)

	return nil
}

// Stop stops the sweep loop
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop runs the sweep on every tick until the context is cancelled
func (s *ReservationSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs a single expiry pass
func (s *ReservationSweeper) sweep(ctx context.Context) {
	stats, err := s.expirer.ExpireReservations(ctx)
	if err != nil {
		s.logger.Error("Reservation sweep failed", zap.Error(err))
		return
	}

	if stats.Scanned == 0 {
		return
	}

	s.logger.Info("Reservation sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("expired", stats.Expired),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
}

// RunOnce triggers a single sweep outside the schedule
func (s *ReservationSweeper) RunOnce(ctx context.Context) (*appinv.ExpiredReservationStats, error) {
	return s.expirer.ExpireReservations(ctx)
}
