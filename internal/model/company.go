package model

import "time"

// Company identifies one organization under analysis.
type Company struct {
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	URL      string `json:"url,omitempty"`
	Location string `json:"location,omitempty"`
}

// JobPosting is a single open role attributed to a company.
type JobPosting struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	CompanyURL  string     `json:"company_url,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// SearchQuery is the input to the keyword opportunity search.
type SearchQuery struct {
	TenantID string `json:"tenant_id"`
	Keywords string `json:"keywords"`
	Location string `json:"location,omitempty"`
}

// ResearchQuery is the input to a single-company deep research run.
type ResearchQuery struct {
	TenantID    string `json:"tenant_id"`
	CompanyName string `json:"company_name,omitempty"`
	CompanyURL  string `json:"company_url,omitempty"`
}
