// Package evidence collects the multi-facet raw data about a company
// that feeds the analysis pipeline.
package evidence

import (
	"context"

	"github.com/sells-group/autoscout/internal/model"
)

// Collector supplies typed evidence for a company. The orchestration core
// depends only on this contract, never on how facets are sourced.
type Collector interface {
	// Collect returns the evidence bundle for one company. Individual
	// facets may be absent; a returned error means the bundle as a whole
	// could not be produced.
	Collect(ctx context.Context, company model.Company) (*model.EvidenceBundle, error)
	// SearchJobs returns job postings matching the keywords, across
	// companies.
	SearchJobs(ctx context.Context, keywords, location string) ([]model.JobPosting, error)
}
