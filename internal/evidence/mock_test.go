package evidence

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/pkg/jobwire"
	"github.com/sells-group/autoscout/pkg/stackprint"
	"github.com/sells-group/autoscout/pkg/wayback"
)

type mockJobwire struct {
	jobs       []jobwire.Job
	jobsErr    error
	results    map[jobwire.Scope][]jobwire.Result
	resultsErr error
}

func (m *mockJobwire) SearchJobs(_ context.Context, _, _ string, _ int) ([]jobwire.Job, error) {
	return m.jobs, m.jobsErr
}

func (m *mockJobwire) Search(_ context.Context, _ string, scope jobwire.Scope) ([]jobwire.Result, error) {
	if m.resultsErr != nil {
		return nil, m.resultsErr
	}
	return m.results[scope], nil
}

type mockStackprint struct {
	profile *stackprint.Profile
	err     error
}

func (m *mockStackprint) Lookup(context.Context, string) (*stackprint.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.profile == nil {
		return nil, eris.New("not found")
	}
	return m.profile, nil
}

type mockWayback struct {
	snaps []wayback.Snapshot
	err   error
}

func (m *mockWayback) Snapshots(context.Context, string) ([]wayback.Snapshot, error) {
	return m.snaps, m.err
}
