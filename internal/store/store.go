// Package store persists the run log: one row per orchestrator request,
// plus the verified findings each research run produced.
package store

import (
	"context"

	"github.com/sells-group/autoscout/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	TenantID string          `json:"tenant_id,omitempty"`
	Kind     model.RunKind   `json:"kind,omitempty"`
	Status   model.RunStatus `json:"status,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the run-log persistence interface.
type Store interface {
	CreateRun(ctx context.Context, tenantID string, kind model.RunKind, subject string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, result []byte, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// SaveFindings records the verified findings of a research run.
	// Saving twice for the same run is idempotent.
	SaveFindings(ctx context.Context, runID string, findings []model.Finding) error

	Migrate(ctx context.Context) error
	Close() error
}
