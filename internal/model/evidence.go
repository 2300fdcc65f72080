package model

import "time"

// CompanyProfile holds the corporate profile facet.
type CompanyProfile struct {
	Description   string `json:"description,omitempty"`
	Industry      string `json:"industry,omitempty"`
	EmployeeCount string `json:"employee_count,omitempty"`
	Founded       string `json:"founded,omitempty"`
	Headquarters  string `json:"headquarters,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
}

// NewsItem is a single news mention of the company.
type NewsItem struct {
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet,omitempty"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Technology is one detected entry in the company's stack fingerprint.
type Technology struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	// FirstSeen and LastSeen bound the detection window when the
	// fingerprint provider supplies one.
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// SocialProfile is one social-media presence of the company.
type SocialProfile struct {
	Network   string `json:"network"`
	URL       string `json:"url,omitempty"`
	Followers int    `json:"followers,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ProcurementRecord is one public purchasing or contract record.
type ProcurementRecord struct {
	Agency      string     `json:"agency,omitempty"`
	Description string     `json:"description"`
	AmountUSD   float64    `json:"amount_usd,omitempty"`
	AwardedAt   *time.Time `json:"awarded_at,omitempty"`
	URL         string     `json:"url,omitempty"`
}

// Snapshot is one archived capture of the company's site.
type Snapshot struct {
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at"`
}

// EvidenceBundle aggregates everything collected about one company.
// Every facet is independently optional; the pipeline must tolerate any
// subset being absent. A bundle is owned by exactly one pipeline run and
// is never mutated after collection.
type EvidenceBundle struct {
	Company        Company             `json:"company"`
	Profile        *CompanyProfile     `json:"profile,omitempty"`
	News           []NewsItem          `json:"news,omitempty"`
	Jobs           []JobPosting        `json:"jobs,omitempty"`
	Technologies   []Technology        `json:"technologies,omitempty"`
	SocialProfiles []SocialProfile     `json:"social_profiles,omitempty"`
	Procurement    []ProcurementRecord `json:"procurement,omitempty"`
	Snapshots      []Snapshot          `json:"snapshots,omitempty"`
	CollectedAt    time.Time           `json:"collected_at"`

	// Sources lists every URL referenced by any facet, deduplicated.
	Sources []string `json:"sources,omitempty"`
}

// DeriveSources rebuilds the Sources list from the facets.
func (b *EvidenceBundle) DeriveSources() {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	if b.Profile != nil {
		add(b.Profile.SourceURL)
	}
	for _, n := range b.News {
		add(n.URL)
	}
	for _, j := range b.Jobs {
		add(j.URL)
	}
	for _, s := range b.SocialProfiles {
		add(s.URL)
	}
	for _, p := range b.Procurement {
		add(p.URL)
	}
	for _, s := range b.Snapshots {
		add(s.URL)
	}
	b.Sources = out
}

// IsEmpty reports whether no facet carries any data.
func (b *EvidenceBundle) IsEmpty() bool {
	return b.Profile == nil &&
		len(b.News) == 0 &&
		len(b.Jobs) == 0 &&
		len(b.Technologies) == 0 &&
		len(b.SocialProfiles) == 0 &&
		len(b.Procurement) == 0 &&
		len(b.Snapshots) == 0
}
