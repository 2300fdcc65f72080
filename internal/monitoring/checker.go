package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/config"
)

// Checker periodically collects run-log metrics and raises alerts when
// thresholds are exceeded.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
}

// NewChecker creates a background alert checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
	}
}

// Run performs one check immediately, then repeats on the configured
// interval until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("alert checker running",
		zap.Duration("interval", c.cfg.CheckInterval()),
		zap.Int("lookback_hours", c.cfg.LookbackWindowHours),
	)

	c.check(ctx, log)

	ticker := time.NewTicker(c.cfg.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

func (c *Checker) check(ctx context.Context, log *zap.Logger) {
	snap, err := c.collector.Collect(ctx, c.cfg.LookbackWindowHours)
	if err != nil {
		log.Error("metrics collection failed", zap.Error(err))
		return
	}

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		log.Debug("run log healthy",
			zap.Float64("failure_rate", snap.FailRate),
			zap.Float64("cost_usd", snap.TotalCostUSD()),
		)
		return
	}

	types := make([]string, len(alerts))
	for i, a := range alerts {
		types[i] = string(a.Type)
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	log.Warn("alerts raised",
		zap.Strings("types", types),
		zap.Int("sent", sent),
	)
}
