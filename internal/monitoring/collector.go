// Package monitoring watches the run log and alerts on failure-rate and
// spend thresholds.
package monitoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/internal/cost"
	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/internal/store"
)

// collectScanLimit bounds how many run rows one snapshot reads.
const collectScanLimit = 1000

// MetricsSnapshot holds a point-in-time view of service health.
type MetricsSnapshot struct {
	SearchTotal   int     `json:"search_total"`
	ResearchTotal int     `json:"research_total"`
	Complete      int     `json:"complete"`
	Failed        int     `json:"failed"`
	Running       int     `json:"running"`
	FailRate      float64 `json:"fail_rate"`
	AvgScore      float64 `json:"avg_score"`

	// CapabilityCostUSD sums the per-run capability spend recorded in
	// run results; EvidenceCostUSD estimates facet API spend from run
	// counts.
	CapabilityCostUSD float64 `json:"capability_cost_usd"`
	EvidenceCostUSD   float64 `json:"evidence_cost_usd"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// TotalCostUSD is the combined estimated spend in the window.
func (s *MetricsSnapshot) TotalCostUSD() float64 {
	return s.CapabilityCostUSD + s.EvidenceCostUSD
}

// Collector gathers metrics from the run log.
type Collector struct {
	store store.Store
	costs *cost.Calculator
}

// NewCollector creates a metrics collector over the run log.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st, costs: cost.NewCalculator(cost.DefaultRates())}
}

// runResult is the subset of a stored result the collector reads back.
type runResult struct {
	Score   float64 `json:"score"`
	CostUSD float64 `json:"cost_usd"`
}

// Collect gathers a snapshot of run metrics over the lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	runs, err := c.store.ListRuns(ctx, store.RunFilter{Limit: collectScanLimit})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}
	cutoff := snap.CollectedAt.Add(-time.Duration(lookbackHours) * time.Hour)

	var scored int
	var scoreSum float64

	for _, r := range runs {
		if r.CreatedAt.Before(cutoff) {
			continue
		}

		switch r.Kind {
		case model.RunKindSearch:
			snap.SearchTotal++
		case model.RunKindResearch:
			snap.ResearchTotal++
		}

		switch r.Status {
		case model.RunStatusComplete:
			snap.Complete++
		case model.RunStatusFailed:
			snap.Failed++
		case model.RunStatusRunning:
			snap.Running++
		}

		if r.Kind == model.RunKindResearch && r.Status == model.RunStatusComplete && len(r.Result) > 0 {
			var res runResult
			if err := json.Unmarshal(r.Result, &res); err == nil {
				scoreSum += res.Score
				scored++
				snap.CapabilityCostUSD += res.CostUSD
			}
		}
	}

	if finished := snap.Complete + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	if scored > 0 {
		snap.AvgScore = scoreSum / float64(scored)
	}

	snap.EvidenceCostUSD = c.costs.JobwireSearches(snap.SearchTotal) +
		c.costs.StackprintLookups(snap.ResearchTotal)

	return snap, nil
}
