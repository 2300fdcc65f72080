package evidence

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/autoscout/internal/config"
	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/pkg/jobwire"
	"github.com/sells-group/autoscout/pkg/stackprint"
	"github.com/sells-group/autoscout/pkg/wayback"
)

var errNoEvidence = eris.New("no evidence facets available")

// HTTPCollector assembles evidence bundles from the facet API clients.
// Facet fetches run in parallel; a failed facet is logged and left empty,
// it never fails the bundle. Only a company with no usable identity at
// all is an error.
type HTTPCollector struct {
	cfg        config.EvidenceConfig
	jobwire    jobwire.Client
	stackprint stackprint.Client
	wayback    wayback.Client
}

// NewHTTPCollector creates a collector over the given facet clients.
func NewHTTPCollector(cfg config.EvidenceConfig, jw jobwire.Client, sp stackprint.Client, wb wayback.Client) *HTTPCollector {
	return &HTTPCollector{cfg: cfg, jobwire: jw, stackprint: sp, wayback: wb}
}

// SearchJobs returns postings matching the keywords.
func (c *HTTPCollector) SearchJobs(ctx context.Context, keywords, location string) ([]model.JobPosting, error) {
	jobs, err := c.jobwire.SearchJobs(ctx, keywords, location, c.cfg.MaxJobs)
	if err != nil {
		return nil, err
	}
	out := make([]model.JobPosting, len(jobs))
	for i, j := range jobs {
		out[i] = model.JobPosting{
			Title:       j.Title,
			Company:     j.Company,
			CompanyURL:  j.CompanyURL,
			Location:    j.Location,
			Description: j.Description,
			URL:         j.URL,
			PostedAt:    j.PostedAt,
		}
	}
	return out, nil
}

// Collect fetches all facets for one company in parallel.
func (c *HTTPCollector) Collect(ctx context.Context, company model.Company) (*model.EvidenceBundle, error) {
	if strings.TrimSpace(company.Name) == "" && company.Domain == "" && company.URL == "" {
		return nil, &model.EvidenceCollectionError{
			Company: company.Name,
			Err:     model.NewValidationError("company", "no usable identity"),
		}
	}

	log := zap.L().With(zap.String("company", company.Name))
	bundle := &model.EvidenceBundle{
		Company:     company,
		CollectedAt: time.Now().UTC(),
	}

	timeout := time.Duration(c.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Facet errors are tracked per-facet and never abort the bundle, so
	// every goroutine returns nil to the group.
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	facet := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(gCtx); err != nil {
				log.Warn("evidence: facet unavailable",
					zap.String("facet", name),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	facet("profile", func(ctx context.Context) error {
		results, err := c.jobwire.Search(ctx, company.Name, jobwire.ScopeProfile)
		if err != nil || len(results) == 0 {
			return err
		}
		mu.Lock()
		bundle.Profile = &model.CompanyProfile{
			Description: results[0].Snippet,
			SourceURL:   results[0].URL,
		}
		mu.Unlock()
		return nil
	})

	facet("news", func(ctx context.Context) error {
		results, err := c.jobwire.Search(ctx, company.Name, jobwire.ScopeNews)
		if err != nil {
			return err
		}
		items := make([]model.NewsItem, len(results))
		for i, r := range results {
			items[i] = model.NewsItem{
				Title:       r.Title,
				Snippet:     r.Snippet,
				URL:         r.URL,
				PublishedAt: r.PublishedAt,
			}
		}
		mu.Lock()
		bundle.News = items
		mu.Unlock()
		return nil
	})

	facet("jobs", func(ctx context.Context) error {
		jobs, err := c.jobwire.SearchJobs(ctx, company.Name, "", c.cfg.MaxJobs)
		if err != nil {
			return err
		}
		postings := make([]model.JobPosting, 0, len(jobs))
		for _, j := range jobs {
			// The jobs facet is scoped to this company only.
			if !strings.EqualFold(j.Company, company.Name) {
				continue
			}
			postings = append(postings, model.JobPosting{
				Title:       j.Title,
				Company:     j.Company,
				CompanyURL:  j.CompanyURL,
				Location:    j.Location,
				Description: j.Description,
				URL:         j.URL,
				PostedAt:    j.PostedAt,
			})
		}
		mu.Lock()
		bundle.Jobs = postings
		mu.Unlock()
		return nil
	})

	facet("technologies", func(ctx context.Context) error {
		domain := company.Domain
		if domain == "" {
			domain = domainFromURL(company.URL)
		}
		if domain == "" {
			return nil
		}
		profile, err := c.stackprint.Lookup(ctx, domain)
		if err != nil {
			return err
		}
		techs := make([]model.Technology, len(profile.Technologies))
		for i, t := range profile.Technologies {
			techs[i] = model.Technology{
				Name:      t.Name,
				Category:  t.Category,
				FirstSeen: t.FirstSeen,
				LastSeen:  t.LastSeen,
			}
		}
		mu.Lock()
		bundle.Technologies = techs
		mu.Unlock()
		return nil
	})

	facet("social", func(ctx context.Context) error {
		results, err := c.jobwire.Search(ctx, company.Name, jobwire.ScopeSocial)
		if err != nil {
			return err
		}
		profiles := make([]model.SocialProfile, len(results))
		for i, r := range results {
			profiles[i] = model.SocialProfile{
				Network: networkFromURL(r.URL),
				URL:     r.URL,
				Bio:     r.Snippet,
			}
		}
		mu.Lock()
		bundle.SocialProfiles = profiles
		mu.Unlock()
		return nil
	})

	facet("procurement", func(ctx context.Context) error {
		results, err := c.jobwire.Search(ctx, company.Name, jobwire.ScopeProcurement)
		if err != nil {
			return err
		}
		records := make([]model.ProcurementRecord, len(results))
		for i, r := range results {
			records[i] = model.ProcurementRecord{
				Description: r.Title,
				URL:         r.URL,
				AwardedAt:   r.PublishedAt,
			}
		}
		mu.Lock()
		bundle.Procurement = records
		mu.Unlock()
		return nil
	})

	facet("snapshots", func(ctx context.Context) error {
		target := company.URL
		if target == "" {
			return nil
		}
		snaps, err := c.wayback.Snapshots(ctx, target)
		if err != nil {
			return err
		}
		out := make([]model.Snapshot, len(snaps))
		for i, s := range snaps {
			out[i] = model.Snapshot{URL: s.URL, CapturedAt: s.CapturedAt}
		}
		mu.Lock()
		bundle.Snapshots = out
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	if bundle.IsEmpty() {
		return nil, &model.EvidenceCollectionError{
			Company: company.Name,
			Err:     errNoEvidence,
		}
	}

	bundle.DeriveSources()
	log.Info("evidence: bundle collected",
		zap.Int("news", len(bundle.News)),
		zap.Int("jobs", len(bundle.Jobs)),
		zap.Int("technologies", len(bundle.Technologies)),
		zap.Int("sources", len(bundle.Sources)),
	)
	return bundle, nil
}

func domainFromURL(raw string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

func networkFromURL(raw string) string {
	host := domainFromURL(raw)
	host = strings.TrimSuffix(host, ".com")
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		host = host[i+1:]
	}
	return host
}
