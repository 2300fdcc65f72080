package model

import "time"

// Opportunity summarizes one company's automation potential within a
// keyword search result.
type Opportunity struct {
	Company     Company   `json:"company"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	JobCount    int       `json:"job_count"`
	TopFindings []Finding `json:"top_findings,omitempty"`
}

// SearchResult is the outcome of a keyword opportunity search.
type SearchResult struct {
	Keywords          string        `json:"keywords"`
	Location          string        `json:"location,omitempty"`
	TotalJobsFound    int           `json:"total_jobs_found"`
	CompaniesAnalyzed int           `json:"companies_analyzed"`
	Opportunities     []Opportunity `json:"opportunities"`
	FromCache         bool          `json:"from_cache,omitempty"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

// ResearchResult is the outcome of one deep company research run.
type ResearchResult struct {
	Company     Company       `json:"company"`
	Score       float64       `json:"score"`
	Confidence  float64       `json:"confidence"`
	Findings    []Finding     `json:"findings"`
	Stages      []StageResult `json:"stages,omitempty"`
	CostUSD     float64       `json:"cost_usd,omitempty"`
	FromCache   bool          `json:"from_cache,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// QuotaStatus reports a tenant's current admission state. Reads never
// mutate counters.
type QuotaStatus struct {
	TenantID        string    `json:"tenant_id"`
	DailyUsed       int64     `json:"daily_used"`
	DailyLimit      int64     `json:"daily_limit"`
	DailyRemaining  int64     `json:"daily_remaining"`
	ConcurrentUsed  int64     `json:"concurrent_used"`
	ConcurrentLimit int64     `json:"concurrent_limit"`
	ResetAt         time.Time `json:"reset_at"`
	CacheBackend    string    `json:"cache_backend"`
}

// RunKind distinguishes the two orchestrator operations in the run log.
type RunKind string

const (
	RunKindSearch   RunKind = "search"
	RunKindResearch RunKind = "research"
)

// RunStatus tracks a logged run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one logged orchestrator request.
type Run struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Kind      RunKind   `json:"kind"`
	Subject   string    `json:"subject"`
	Status    RunStatus `json:"status"`
	Result    []byte    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
