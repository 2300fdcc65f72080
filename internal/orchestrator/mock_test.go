package orchestrator

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/internal/model"
)

// mockCollector serves scripted jobs and per-company bundles.
type mockCollector struct {
	jobs        []model.JobPosting
	bundles     map[string]*model.EvidenceBundle
	failFor     map[string]bool
	searchErr   error
	blockSearch chan struct{} // when set, SearchJobs waits for it to close
	collectHits atomic.Int64
	searchHits  atomic.Int64
}

func (m *mockCollector) SearchJobs(_ context.Context, keywords, location string) ([]model.JobPosting, error) {
	m.searchHits.Add(1)
	if m.blockSearch != nil {
		<-m.blockSearch
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.jobs, nil
}

func (m *mockCollector) Collect(_ context.Context, company model.Company) (*model.EvidenceBundle, error) {
	m.collectHits.Add(1)
	key := strings.ToLower(company.Name)
	if m.failFor[key] {
		return nil, &model.EvidenceCollectionError{Company: company.Name, Err: eris.New("all facets unavailable")}
	}
	if b, ok := m.bundles[key]; ok {
		return b, nil
	}
	return &model.EvidenceBundle{
		Company: company,
		Jobs: []model.JobPosting{
			{Title: "Data Entry Specialist", Company: company.Name},
		},
	}, nil
}
