// Package orchestrator coordinates admission, caching, evidence
// collection and the analysis pipeline behind the two public research
// operations.
package orchestrator

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/autoscout/internal/admission"
	"github.com/sells-group/autoscout/internal/cache"
	"github.com/sells-group/autoscout/internal/config"
	"github.com/sells-group/autoscout/internal/evidence"
	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/internal/pipeline"
	"github.com/sells-group/autoscout/internal/store"
)

// topFindingsPerOpportunity caps the findings echoed into each search
// opportunity so batch results stay compact.
const topFindingsPerOpportunity = 3

// Orchestrator owns the request lifecycle for both operations: admission,
// cache consult, evidence collection, pipeline execution, cache fill and
// run logging.
type Orchestrator struct {
	cfg       *config.Config
	admission *admission.Controller
	cache     *cache.Service
	collector evidence.Collector
	pipeline  *pipeline.Pipeline
	runs      store.Store // optional; nil disables the run log

	// flight collapses concurrent identical requests onto one execution.
	flight singleflight.Group
}

// New assembles an orchestrator. runs may be nil when run logging is
// disabled.
func New(cfg *config.Config, adm *admission.Controller, cch *cache.Service, collector evidence.Collector, pipe *pipeline.Pipeline, runs store.Store) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		admission: adm,
		cache:     cch,
		collector: collector,
		pipeline:  pipe,
		runs:      runs,
	}
}

// SearchOpportunities finds companies hiring for the given keywords and
// analyzes the most active ones for automation opportunity.
func (o *Orchestrator) SearchOpportunities(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	if strings.TrimSpace(q.Keywords) == "" {
		return nil, model.NewValidationError("keywords", "must not be empty")
	}
	if strings.TrimSpace(q.TenantID) == "" {
		return nil, model.NewValidationError("tenant_id", "must not be empty")
	}

	params := map[string]string{
		"keywords": q.Keywords,
		"location": q.Location,
	}

	if data, ok := o.cache.Get(ctx, cache.NamespaceSearch, params); ok {
		var cached model.SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.FromCache = true
			return &cached, nil
		}
		zap.L().Warn("orchestrator: discarding undecodable cached search result")
	}

	if !o.admission.TryAdmit(ctx, q.TenantID) {
		return nil, &model.AdmissionDeniedError{TenantID: q.TenantID, RetryAfter: o.admission.RetryAfter()}
	}
	o.admission.MarkStarted(ctx, q.TenantID)
	defer o.admission.MarkFinished(ctx, q.TenantID)

	runID := o.logRunStart(ctx, q.TenantID, model.RunKindSearch, q.Keywords)

	key := o.cache.DeriveKey(cache.NamespaceSearch, params)
	v, err, _ := o.flight.Do(key, func() (any, error) {
		return o.executeSearch(ctx, q, params)
	})
	if err != nil {
		o.logRunEnd(ctx, runID, nil, err)
		return nil, err
	}

	result := v.(*model.SearchResult)
	o.logRunEnd(ctx, runID, result, nil)
	return result, nil
}

func (o *Orchestrator) executeSearch(ctx context.Context, q model.SearchQuery, params map[string]string) (*model.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Search.RequestTimeout())
	defer cancel()

	log := zap.L().With(zap.String("keywords", q.Keywords), zap.String("tenant", q.TenantID))

	jobs, err := o.collector.SearchJobs(ctx, q.Keywords, q.Location)
	if err != nil {
		return nil, eris.Wrap(err, "orchestrator: job search")
	}

	companies := rankCompanies(jobs, o.cfg.Search.TopCompanies)
	log.Info("orchestrator: search found candidates",
		zap.Int("jobs", len(jobs)),
		zap.Int("companies", len(companies)),
	)

	result := &model.SearchResult{
		Keywords:       q.Keywords,
		Location:       q.Location,
		TotalJobsFound: len(jobs),
		GeneratedAt:    time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Search.MaxConcurrentCompanies)

	for _, cand := range companies {
		g.Go(func() error {
			// One company failing must not sink the batch.
			opp, err := o.analyzeCompany(gctx, cand)
			if err != nil {
				log.Warn("orchestrator: company analysis failed",
					zap.String("company", cand.company.Name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			result.CompaniesAnalyzed++
			result.Opportunities = append(result.Opportunities, *opp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(result.Opportunities, func(i, j int) bool {
		return result.Opportunities[i].Score > result.Opportunities[j].Score
	})

	if data, err := json.Marshal(result); err == nil {
		o.cache.Set(ctx, cache.NamespaceSearch, params, data, 0)
	}
	return result, nil
}

// candidate pairs a ranked company with its posting volume.
type candidate struct {
	company  model.Company
	jobCount int
}

// rankCompanies groups postings by company and returns the top n by
// posting volume.
func rankCompanies(jobs []model.JobPosting, n int) []candidate {
	type bucket struct {
		company model.Company
		count   int
	}
	byName := make(map[string]*bucket)
	var order []string

	for _, j := range jobs {
		name := strings.TrimSpace(j.Company)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		b, ok := byName[key]
		if !ok {
			b = &bucket{company: model.Company{Name: name, URL: j.CompanyURL, Location: j.Location}}
			byName[key] = b
			order = append(order, key)
		}
		b.count++
		if b.company.URL == "" && j.CompanyURL != "" {
			b.company.URL = j.CompanyURL
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byName[order[i]].count > byName[order[j]].count
	})

	if n > 0 && len(order) > n {
		order = order[:n]
	}

	out := make([]candidate, 0, len(order))
	for _, key := range order {
		b := byName[key]
		out = append(out, candidate{company: b.company, jobCount: b.count})
	}
	return out
}

func (o *Orchestrator) analyzeCompany(ctx context.Context, cand candidate) (*model.Opportunity, error) {
	bundle, err := o.collectEvidence(ctx, cand.company)
	if err != nil {
		return nil, err
	}

	run, err := o.pipeline.Run(ctx, bundle)
	if err != nil {
		return nil, err
	}

	opp := &model.Opportunity{
		Company:    cand.company,
		Score:      run.Score,
		Confidence: summaryConfidence(run.Findings),
		JobCount:   cand.jobCount,
	}
	for _, f := range run.Findings {
		if f.HasTag("summary") {
			continue
		}
		opp.TopFindings = append(opp.TopFindings, f)
		if len(opp.TopFindings) == topFindingsPerOpportunity {
			break
		}
	}
	return opp, nil
}

// DeepResearch runs the full evidence-and-analysis pass for one company.
func (o *Orchestrator) DeepResearch(ctx context.Context, q model.ResearchQuery) (*model.ResearchResult, error) {
	company, err := researchSubject(q)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.TenantID) == "" {
		return nil, model.NewValidationError("tenant_id", "must not be empty")
	}

	params := map[string]string{
		"company": company.Name,
		"url":     company.URL,
	}

	if data, ok := o.cache.Get(ctx, cache.NamespaceResearch, params); ok {
		var cached model.ResearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.FromCache = true
			return &cached, nil
		}
		zap.L().Warn("orchestrator: discarding undecodable cached research result")
	}

	if !o.admission.TryAdmit(ctx, q.TenantID) {
		return nil, &model.AdmissionDeniedError{TenantID: q.TenantID, RetryAfter: o.admission.RetryAfter()}
	}
	o.admission.MarkStarted(ctx, q.TenantID)
	defer o.admission.MarkFinished(ctx, q.TenantID)

	runID := o.logRunStart(ctx, q.TenantID, model.RunKindResearch, company.Name)

	key := o.cache.DeriveKey(cache.NamespaceResearch, params)
	v, err, _ := o.flight.Do(key, func() (any, error) {
		return o.executeResearch(ctx, company, params)
	})
	if err != nil {
		o.logRunEnd(ctx, runID, nil, err)
		return nil, err
	}

	result := v.(*model.ResearchResult)
	if o.runs != nil && runID != "" {
		if err := o.runs.SaveFindings(ctx, runID, result.Findings); err != nil {
			zap.L().Warn("orchestrator: saving findings failed", zap.Error(err))
		}
	}
	o.logRunEnd(ctx, runID, result, nil)
	return result, nil
}

func (o *Orchestrator) executeResearch(ctx context.Context, company model.Company, params map[string]string) (*model.ResearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Search.RequestTimeout())
	defer cancel()

	bundle, err := o.collectEvidence(ctx, company)
	if err != nil {
		return nil, err
	}

	run, err := o.pipeline.Run(ctx, bundle)
	if err != nil {
		return nil, err
	}

	result := &model.ResearchResult{
		Company:     company,
		Score:       run.Score,
		Confidence:  summaryConfidence(run.Findings),
		Findings:    run.Findings,
		Stages:      run.Stages,
		CostUSD:     run.CostUSD,
		GeneratedAt: time.Now().UTC(),
	}

	if data, err := json.Marshal(result); err == nil {
		o.cache.Set(ctx, cache.NamespaceResearch, params, data, 0)
	}
	return result, nil
}

// collectEvidence consults the evidence cache before the collector, and
// fills it on a miss.
func (o *Orchestrator) collectEvidence(ctx context.Context, company model.Company) (*model.EvidenceBundle, error) {
	params := map[string]string{
		"company": company.Name,
		"url":     company.URL,
	}

	if data, ok := o.cache.Get(ctx, cache.NamespaceEvidence, params); ok {
		var bundle model.EvidenceBundle
		if err := json.Unmarshal(data, &bundle); err == nil {
			return &bundle, nil
		}
	}

	bundle, err := o.collector.Collect(ctx, company)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(bundle); err == nil {
		o.cache.Set(ctx, cache.NamespaceEvidence, params, data, 0)
	}
	return bundle, nil
}

// Status reports a tenant's quota state without consuming any of it.
func (o *Orchestrator) Status(ctx context.Context, tenantID string) (*model.QuotaStatus, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, model.NewValidationError("tenant_id", "must not be empty")
	}
	status, err := o.admission.Status(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	status.CacheBackend = o.cache.BackendName()
	return status, nil
}

// researchSubject validates the research query and normalizes it into a
// company identity. At least one of name and URL is required.
func researchSubject(q model.ResearchQuery) (model.Company, error) {
	name := strings.TrimSpace(q.CompanyName)
	rawURL := strings.TrimSpace(q.CompanyURL)

	if name == "" && rawURL == "" {
		return model.Company{}, model.NewValidationError("company", "name or url is required")
	}

	company := model.Company{Name: name}
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return model.Company{}, model.NewValidationError("company_url", "must be an absolute http(s) url")
		}
		company.URL = rawURL
		company.Domain = strings.TrimPrefix(u.Hostname(), "www.")
		if company.Name == "" {
			company.Name = company.Domain
		}
	}
	return company, nil
}

// summaryConfidence returns the confidence of the summary finding, which
// the pipeline places first.
func summaryConfidence(findings []model.Finding) float64 {
	for _, f := range findings {
		if f.HasTag("summary") {
			return f.Confidence
		}
	}
	return 0
}

// logRunStart records a run-log entry; a nil or failing store only logs.
func (o *Orchestrator) logRunStart(ctx context.Context, tenantID string, kind model.RunKind, subject string) string {
	if o.runs == nil {
		return ""
	}
	run, err := o.runs.CreateRun(ctx, tenantID, kind, subject)
	if err != nil {
		zap.L().Warn("orchestrator: run log create failed", zap.Error(err))
		return ""
	}
	return run.ID
}

func (o *Orchestrator) logRunEnd(ctx context.Context, runID string, result any, runErr error) {
	if o.runs == nil || runID == "" {
		return
	}

	status := model.RunStatusComplete
	var payload []byte
	errMsg := ""
	if runErr != nil {
		status = model.RunStatusFailed
		errMsg = runErr.Error()
	} else if result != nil {
		payload, _ = json.Marshal(result)
	}

	if err := o.runs.CompleteRun(ctx, runID, status, payload, errMsg); err != nil {
		zap.L().Warn("orchestrator: run log complete failed", zap.Error(err))
	}
}
