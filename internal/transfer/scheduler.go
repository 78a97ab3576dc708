package transfer

import (
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Scheduler runs deferred jobs, such as the simulated counterparty that
// fulfills a money request after a delay
type Scheduler interface {
	Schedule(delay time.Duration, job func()) error
}

// PoolScheduler implements Scheduler on an ants worker pool. The delay is
// spent on a timer; workers are only occupied while the job itself runs.
type PoolScheduler struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewPoolScheduler creates a scheduler backed by a pool of the given size
func NewPoolScheduler(size int, logger *slog.Logger) (*PoolScheduler, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &PoolScheduler{pool: pool, logger: logger}, nil
}

// Schedule queues job to run after delay
func (s *PoolScheduler) Schedule(delay time.Duration, job func()) error {
	time.AfterFunc(delay, func() {
		if err := s.pool.Submit(job); err != nil {
			s.logger.Error("Failed to submit scheduled job to worker pool", "error", err)
		}
	})
	return nil
}

// Release stops the pool. Queued jobs whose timers have not fired are dropped.
func (s *PoolScheduler) Release() {
	s.pool.Release()
}
