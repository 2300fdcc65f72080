package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/internal/store"
)

func TestChecker_StopsOnCancel(t *testing.T) {
	cfg := monitoringConfig()
	cfg.CheckIntervalSecs = 3600
	c := NewChecker(NewCollector(seedRunLog(t)), NewAlerter(cfg), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checker did not stop after context cancellation")
	}
}

func TestChecker_ChecksImmediatelyOnStart(t *testing.T) {
	hits := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run, err := st.CreateRun(ctx, "tenant-a", model.RunKindSearch, "dispatch")
		require.NoError(t, err)
		require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusComplete, []byte(`{}`), ""))
	}
	for i := 0; i < 3; i++ {
		run, err := st.CreateRun(ctx, "tenant-a", model.RunKindSearch, "dispatch")
		require.NoError(t, err)
		require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusFailed, nil, "job search failed"))
	}

	cfg := monitoringConfig()
	cfg.WebhookURL = srv.URL
	cfg.CheckIntervalSecs = 3600
	c := NewChecker(NewCollector(st), NewAlerter(cfg), cfg)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(runCtx)
		close(done)
	}()

	// The interval is an hour, so a delivery within the timeout can only
	// come from the startup check.
	select {
	case <-hits:
	case <-time.After(2 * time.Second):
		t.Fatal("no alert delivered from the startup check")
	}

	cancel()
	<-done
}

func TestChecker_CheckOnce(t *testing.T) {
	cfg := monitoringConfig()
	c := NewChecker(NewCollector(seedRunLog(t)), NewAlerter(cfg), cfg)

	// One pass over a healthy run log must not panic or alert.
	c.check(context.Background(), zap.NewNop())
}
