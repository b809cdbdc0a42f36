package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
)

// CapacityController enforces the daily admission ceiling. It is the only
// shared mutable counter in the pipeline; every day-check-and-increment
// sequence runs under one mutex so concurrent admission attempts can never
// overshoot the limit. The day rolls forward from the local calendar date,
// not a timer: any call that observes a new date resets the counter first.
type CapacityController struct {
	mu    sync.Mutex
	store CapacityStore
	limit int
	now   func() time.Time

	state *domain.DailyCapacity
}

// NewCapacityController creates a capacity controller.
// Parameters:
//   - store: capacity persistence.
//   - limit: daily admission ceiling.
//   - now: clock function; nil uses time.Now.
// Returns:
//   - *CapacityController: controller ready for use.
func NewCapacityController(store CapacityStore, limit int, now func() time.Time) *CapacityController {
	if now == nil {
		now = time.Now
	}
	return &CapacityController{
		store: store,
		limit: limit,
		now:   now,
	}
}

// today renders the current local calendar day.
func (c *CapacityController) today() string {
	return c.now().Format("2006-01-02")
}

// rollForward loads state if needed and resets the counter when the calendar
// day has advanced past the recorded date. Caller must hold c.mu.
func (c *CapacityController) rollForward(ctx context.Context) error {
	if c.state == nil {
		state, err := c.store.GetLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to load capacity state: %w", err)
		}
		c.state = state
	}

	today := c.today()
	if c.state == nil || c.state.Date != today {
		c.state = &domain.DailyCapacity{
			Date:          today,
			AdmittedCount: 0,
			Limit:         c.limit,
		}
		if err := c.store.Save(ctx, c.state); err != nil {
			return fmt.Errorf("failed to persist capacity rollover: %w", err)
		}
	}
	// Config changes to the limit take effect on the next observation.
	c.state.Limit = c.limit
	return nil
}

// TryAdmit atomically admits one lead if the daily ceiling allows it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - bool: true when a slot was claimed; false when capacity is exhausted
//     (no side effects in that case).
//   - error: non-nil if capacity state cannot be read or written; no slot is
//     claimed on error.
func (c *CapacityController) TryAdmit(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rollForward(ctx); err != nil {
		return false, err
	}
	if c.state.AdmittedCount >= c.state.Limit {
		return false, nil
	}

	c.state.AdmittedCount++
	if err := c.store.Save(ctx, c.state); err != nil {
		c.state.AdmittedCount--
		return false, fmt.Errorf("failed to persist admission: %w", err)
	}
	return true, nil
}

// Release returns one previously claimed slot, used when persisting the
// admitted lead fails after TryAdmit succeeded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if the rollback cannot be persisted.
func (c *CapacityController) Release(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil || c.state.AdmittedCount == 0 {
		return nil
	}
	c.state.AdmittedCount--
	if err := c.store.Save(ctx, c.state); err != nil {
		c.state.AdmittedCount++
		return fmt.Errorf("failed to persist capacity release: %w", err)
	}
	return nil
}

// Remaining reports how many admissions are left today, rolling the day
// forward first if needed.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int: remaining capacity, never negative.
//   - error: non-nil if capacity state cannot be read or written.
func (c *CapacityController) Remaining(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rollForward(ctx); err != nil {
		return 0, err
	}
	remaining := c.state.Limit - c.state.AdmittedCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
