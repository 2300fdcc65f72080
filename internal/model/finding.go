package model

import (
	"sort"
	"strings"
	"time"
)

// Citation points at the evidence backing a finding.
type Citation struct {
	Title string     `json:"title"`
	URL   string     `json:"url,omitempty"`
	Date  *time.Time `json:"date,omitempty"`
}

// Finding is one discrete, confidence-scored observation produced by a
// pipeline stage. Findings are immutable once produced; later stages only
// filter, re-weight confidence, or append new findings.
type Finding struct {
	Title      string     `json:"title"`
	Detail     string     `json:"detail,omitempty"`
	Confidence float64    `json:"confidence"`
	Tags       []string   `json:"tags,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
}

// HasTag reports whether the finding carries the given tag.
func (f Finding) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DedupeKey identifies a finding for cross-verification: title plus the
// sorted tag set. Tags categorize, they do not distinguish instances, so
// two findings with the same title and tags are the same observation.
func (f Finding) DedupeKey() string {
	tags := make([]string, len(f.Tags))
	copy(tags, f.Tags)
	sort.Strings(tags)
	return strings.ToLower(strings.TrimSpace(f.Title)) + "|" + strings.Join(tags, ",")
}

// StageResult records one stage's output within a pipeline run.
type StageResult struct {
	Name       string    `json:"name"`
	Findings   []Finding `json:"findings"`
	Fallback   bool      `json:"fallback"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// PipelineRun accumulates stage outputs for one company. It lives for a
// single request; only the serialized result outlives it, via the cache.
type PipelineRun struct {
	Company  Company       `json:"company"`
	Stages   []StageResult `json:"stages"`
	Findings []Finding     `json:"findings"`
	Score    float64       `json:"score"`
	CostUSD  float64       `json:"cost_usd,omitempty"`
}

// StageFindings returns the findings recorded for a named stage.
func (r *PipelineRun) StageFindings(name string) []Finding {
	for _, s := range r.Stages {
		if s.Name == name {
			return s.Findings
		}
	}
	return nil
}
