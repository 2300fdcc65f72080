// Package admission enforces per-tenant daily and concurrency quotas on
// top of the counter store.
package admission

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/config"
	"github.com/sells-group/autoscout/internal/counter"
	"github.com/sells-group/autoscout/internal/model"
)

const (
	dailyKeyTTL = 24 * time.Hour
	// concurrencyKeyTTL is an orphan-key safety net: if a process dies
	// without calling MarkFinished, the slot frees itself within the hour.
	concurrencyKeyTTL = time.Hour
)

// Controller enforces admission quotas. Counter-store failures never
// reject a caller: the controller fails open, trading strictness for
// availability during infrastructure outages.
type Controller struct {
	counters counter.Store
	cfg      config.AdmissionConfig
	now      func() time.Time
}

// New creates an admission controller over the given counter store.
func New(counters counter.Store, cfg config.AdmissionConfig) *Controller {
	return &Controller{
		counters: counters,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (c *Controller) WithNow(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) dailyKey(tenantID string) string {
	return fmt.Sprintf("quota:daily:%s:%s", tenantID, c.now().UTC().Format("2006-01-02"))
}

func (c *Controller) concurrencyKey(tenantID string) string {
	return fmt.Sprintf("quota:concurrent:%s", tenantID)
}

// TryAdmit reserves one unit of the tenant's daily quota and checks the
// concurrency quota. The daily key embeds the UTC date, so the window
// resets by key rotation rather than explicit zeroing.
func (c *Controller) TryAdmit(ctx context.Context, tenantID string) bool {
	log := zap.L().With(zap.String("tenant", tenantID))

	dk := c.dailyKey(tenantID)
	used, err := c.counters.Incr(ctx, dk)
	if err != nil {
		log.Warn("admission: counter store unavailable, failing open", zap.Error(err))
		return true
	}

	// First request of the day sets the window expiry.
	if used == 1 {
		if err := c.counters.Expire(ctx, dk, dailyKeyTTL); err != nil {
			log.Warn("admission: failed to set daily expiry", zap.Error(err))
		}
	}

	if used > c.cfg.DailyLimit {
		if _, err := c.counters.Decr(ctx, dk); err != nil {
			log.Warn("admission: failed to revert daily counter", zap.Error(err))
		}
		log.Info("admission: daily quota exceeded",
			zap.Int64("used", used-1),
			zap.Int64("limit", c.cfg.DailyLimit),
		)
		return false
	}

	inFlight, _, err := c.counters.Get(ctx, c.concurrencyKey(tenantID))
	if err != nil {
		log.Warn("admission: concurrency read failed, failing open", zap.Error(err))
		return true
	}
	if inFlight >= c.cfg.ConcurrentLimit {
		if _, err := c.counters.Decr(ctx, dk); err != nil {
			log.Warn("admission: failed to revert daily counter", zap.Error(err))
		}
		log.Info("admission: concurrency quota exceeded",
			zap.Int64("in_flight", inFlight),
			zap.Int64("limit", c.cfg.ConcurrentLimit),
		)
		return false
	}

	return true
}

// MarkStarted takes a concurrency slot. The key's expiry is refreshed on
// every acquisition so orphaned slots from crashed processes free up.
func (c *Controller) MarkStarted(ctx context.Context, tenantID string) {
	key := c.concurrencyKey(tenantID)
	if _, err := c.counters.Incr(ctx, key); err != nil {
		zap.L().Warn("admission: mark started failed", zap.String("tenant", tenantID), zap.Error(err))
		return
	}
	if err := c.counters.Expire(ctx, key, concurrencyKeyTTL); err != nil {
		zap.L().Warn("admission: concurrency expiry failed", zap.String("tenant", tenantID), zap.Error(err))
	}
}

// MarkFinished releases a concurrency slot, deleting the key when it
// reaches zero so idle tenants leave nothing behind.
func (c *Controller) MarkFinished(ctx context.Context, tenantID string) {
	key := c.concurrencyKey(tenantID)
	n, err := c.counters.Decr(ctx, key)
	if err != nil {
		zap.L().Warn("admission: mark finished failed", zap.String("tenant", tenantID), zap.Error(err))
		return
	}
	if n <= 0 {
		if err := c.counters.Delete(ctx, key); err != nil {
			zap.L().Warn("admission: concurrency key delete failed", zap.String("tenant", tenantID), zap.Error(err))
		}
	}
}

// Status returns the tenant's current quota usage without mutating any
// counter.
func (c *Controller) Status(ctx context.Context, tenantID string) (*model.QuotaStatus, error) {
	dailyUsed, _, err := c.counters.Get(ctx, c.dailyKey(tenantID))
	if err != nil {
		return nil, err
	}
	inFlight, _, err := c.counters.Get(ctx, c.concurrencyKey(tenantID))
	if err != nil {
		return nil, err
	}

	remaining := c.cfg.DailyLimit - dailyUsed
	if remaining < 0 {
		remaining = 0
	}

	return &model.QuotaStatus{
		TenantID:        tenantID,
		DailyUsed:       dailyUsed,
		DailyLimit:      c.cfg.DailyLimit,
		DailyRemaining:  remaining,
		ConcurrentUsed:  inFlight,
		ConcurrentLimit: c.cfg.ConcurrentLimit,
		ResetAt:         c.NextReset(),
	}, nil
}

// NextReset returns the next UTC midnight, when the daily window rotates.
func (c *Controller) NextReset() time.Time {
	now := c.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// RetryAfter returns how long a rejected caller should wait before the
// daily window rotates.
func (c *Controller) RetryAfter() time.Duration {
	return c.NextReset().Sub(c.now().UTC())
}
