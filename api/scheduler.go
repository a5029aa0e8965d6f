/*
scheduler.go - Custom holiday sync scheduler

PURPOSE:
  Periodically reloads the in-memory custom holiday set from storage, so
  instances sharing one database pick up holidays created or deleted
  through another instance.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each run replaces holiday.Custom with the stored list
  - A failed run keeps the previous set and is retried on the next tick

CONFIGURATION:
  - CheckInterval: How often to reload (HOLIDAY_SYNC_INTERVAL)
  - Enabled: false when the interval is zero

USAGE:
  scheduler := NewHolidaySyncScheduler(store, custom, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateHoliday/DeleteHoliday update the local set directly
  - holiday/custom.go: Custom.Load
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/warp/earnings-engine/holiday"
)

// HolidaySyncScheduler keeps holiday.Custom in step with storage.
type HolidaySyncScheduler struct {
	Store         holiday.Store
	Custom        *holiday.Custom
	Log           *zap.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun atomic.Int64 // unix nanoseconds
}

// NewHolidaySyncScheduler creates a new scheduler.
func NewHolidaySyncScheduler(store holiday.Store, custom *holiday.Custom, log *zap.Logger) *HolidaySyncScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HolidaySyncScheduler{
		Store:         store,
		Custom:        custom,
		Log:           log,
		CheckInterval: time.Minute,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (s *HolidaySyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled || s.CheckInterval <= 0 {
		s.Log.Info("holiday sync disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker.C, s.stop)

	s.Log.Info("holiday sync started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight run.
func (s *HolidaySyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info("holiday sync stopped")
	}
}

func (s *HolidaySyncScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-tick:
			_ = s.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow reloads immediately.
func (s *HolidaySyncScheduler) RunNow(ctx context.Context) error {
	timeout := s.CheckInterval
	if timeout <= 0 || timeout > 30*time.Second {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Custom.Load(ctx, s.Store); err != nil {
		s.Log.Warn("holiday sync failed", zap.Error(err))
		return err
	}

	s.lastRun.Store(time.Now().UnixNano())
	return nil
}

// LastRun returns when the last successful reload finished.
func (s *HolidaySyncScheduler) LastRun() time.Time {
	ns := s.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
