package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "tenant-a", "research", "Acme Corp", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "tenant-a", model.RunKindResearch, "Acme Corp")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET`).
		WithArgs("complete", pgxmock.AnyArg(), "", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", model.RunStatusComplete, []byte(`{"score":5}`), "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET`).
		WithArgs("complete", pgxmock.AnyArg(), "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", model.RunStatusComplete, nil, "")
	assert.Error(t, err)
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM runs WHERE id`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "kind", "subject", "status", "result", "error", "created_at", "updated_at",
		}).AddRow("run-1", "tenant-a", "search", "warehouse ops", "complete", []byte(`{"total_jobs_found":12}`), (*string)(nil), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunKindSearch, run.Kind)
	assert.Equal(t, "warehouse ops", run.Subject)
	assert.JSONEq(t, `{"total_jobs_found":12}`, string(run.Result))
	assert.Empty(t, run.Error)
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM runs WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "kind", "subject", "status", "result", "error", "created_at", "updated_at",
		}))

	_, err := s.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestPostgresStore_ListRuns_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM runs WHERE tenant_id = \$1 AND kind = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("tenant-a", "search", 50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "kind", "subject", "status", "result", "error", "created_at", "updated_at",
		}).AddRow("run-1", "tenant-a", "search", "dispatch", "running", []byte(nil), (*string)(nil), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{TenantID: "tenant-a", Kind: model.RunKindSearch})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveFindings_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	assert.NoError(t, s.SaveFindings(context.Background(), "run-1", nil))
}

func TestPostgresStore_SaveFindings_BulkUpsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom([]string{"_tmp_upsert_run_findings"},
		[]string{"run_id", "title", "detail", "confidence", "tags", "citations"}).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "run_findings"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.SaveFindings(context.Background(), "run-1", []model.Finding{
		{Title: "Manual data entry roles", Confidence: 0.6},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
