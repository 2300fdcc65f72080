package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "tenant-a", model.RunKindResearch, "Acme Corp")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	result, _ := json.Marshal(map[string]any{"score": 6.2})
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunStatusComplete, result, ""))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "tenant-a", got.TenantID)
	assert.Equal(t, model.RunKindResearch, got.Kind)
	assert.Equal(t, "Acme Corp", got.Subject)
	assert.JSONEq(t, string(result), string(got.Result))
	assert.Empty(t, got.Error)
}

func TestSQLiteStore_CompleteRun_Failed(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "tenant-a", model.RunKindSearch, "logistics coordinator")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunStatusFailed, nil, "evidence collection failed"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "evidence collection failed", got.Error)
	assert.Nil(t, got.Result)
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteRun(context.Background(), "missing", model.RunStatusComplete, nil, "")
	assert.Error(t, err)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLiteStore_ListRuns_Filters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "tenant-a", model.RunKindSearch, "warehouse ops")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "tenant-a", model.RunKindResearch, "Acme Corp")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "tenant-b", model.RunKindSearch, "dispatch")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, model.RunStatusComplete, nil, ""))

	runs, err := s.ListRuns(ctx, RunFilter{TenantID: "tenant-a"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, RunFilter{TenantID: "tenant-a", Kind: model.RunKindSearch})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, a.ID, runs[0].ID)

	runs, err = s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStore_SaveFindings_Idempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "tenant-a", model.RunKindResearch, "Acme Corp")
	require.NoError(t, err)

	findings := []model.Finding{
		{Title: "Manual data entry roles", Confidence: 0.6, Tags: []string{"manual-process"}},
		{Title: "Legacy platform in use", Confidence: 0.5, Citations: []model.Citation{{Title: "site", URL: "https://acme.test"}}},
	}
	require.NoError(t, s.SaveFindings(ctx, run.ID, findings))

	// Second save with an adjusted confidence must overwrite, not duplicate.
	findings[0].Confidence = 0.8
	require.NoError(t, s.SaveFindings(ctx, run.ID, findings))

	var count int
	var confidence float64
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM run_findings WHERE run_id = ?`, run.ID).Scan(&count))
	require.NoError(t, s.db.QueryRow(`SELECT confidence FROM run_findings WHERE run_id = ? AND title = ?`, run.ID, "Manual data entry roles").Scan(&confidence))
	assert.Equal(t, 2, count)
	assert.Equal(t, 0.8, confidence)
}

func TestSQLiteStore_SaveFindings_Empty(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.SaveFindings(context.Background(), "any", nil))
}
