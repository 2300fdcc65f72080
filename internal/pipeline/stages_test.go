package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/model"
)

func fixtureBundle() *model.EvidenceBundle {
	recent := time.Now().UTC().Add(-10 * 24 * time.Hour)
	return &model.EvidenceBundle{
		Company: model.Company{Name: "Acme", Domain: "acme.test", URL: "https://acme.test"},
		Profile: &model.CompanyProfile{
			Description: "Acme is a B2B enterprise logistics platform with an API for wholesale partners.",
			SourceURL:   "https://acme.test/about",
		},
		Jobs: []model.JobPosting{
			{Title: "Data Entry Clerk", Description: "Manual data entry and spreadsheet reconciliation", URL: "https://jobs.test/1"},
			{Title: "Office Assistant", Description: "Filing and invoice processing", URL: "https://jobs.test/2"},
			{Title: "Software Engineer", Description: "Build services", URL: "https://jobs.test/3"},
		},
		Technologies: []model.Technology{
			{Name: "WordPress", Category: "cms"},
			{Name: "jQuery", Category: "javascript"},
			{Name: "MySQL", Category: "database"},
		},
		News: []model.NewsItem{
			{Title: "Acme raises Series B", URL: "https://news.test/a", PublishedAt: &recent},
			{Title: "Acme opens new warehouse", URL: "https://news.test/b", PublishedAt: &recent},
			{Title: "Acme expands enterprise sales", URL: "https://news.test/c", PublishedAt: &recent},
		},
		Procurement: []model.ProcurementRecord{
			{Description: "GSA logistics contract", URL: "https://sam.test/1"},
		},
	}
}

func TestAnalyzeTechnical_ManualRoles(t *testing.T) {
	findings := analyzeTechnical(fixtureBundle())
	require.NotEmpty(t, findings)

	var manual *model.Finding
	for i := range findings {
		if findings[i].HasTag("manual-process") {
			manual = &findings[i]
		}
	}
	require.NotNil(t, manual, "expected a manual-process finding")
	assert.Contains(t, manual.Detail, "2 of 3")
	assert.True(t, manual.Confidence > 0 && manual.Confidence <= 1)
	assert.NotEmpty(t, manual.Citations)
}

func TestAnalyzeTechnical_LegacyPlatforms(t *testing.T) {
	findings := analyzeTechnical(fixtureBundle())

	legacy := 0
	for _, f := range findings {
		if f.HasTag("legacy-tech") {
			legacy++
		}
	}
	// WordPress and jQuery both match.
	assert.Equal(t, 2, legacy)
}

func TestAnalyzeTechnical_EmptyBundle(t *testing.T) {
	findings := analyzeTechnical(&model.EvidenceBundle{Company: model.Company{Name: "Empty"}})
	assert.Empty(t, findings)
}

func TestAnalyzeBusiness_EnterpriseClassification(t *testing.T) {
	findings := analyzeBusiness(fixtureBundle())
	require.NotEmpty(t, findings)

	var classified bool
	for _, f := range findings {
		if f.HasTag("business-model:b2b") {
			classified = true
		}
	}
	assert.True(t, classified, "expected a b2b classification finding")
}

func TestAnalyzeBusiness_GrowthSignal(t *testing.T) {
	findings := analyzeBusiness(fixtureBundle())

	var growth bool
	for _, f := range findings {
		if f.HasTag("growth") {
			growth = true
			assert.NotEmpty(t, f.Citations)
		}
	}
	assert.True(t, growth, "three recent news items should trigger a growth finding")
}

func TestAnalyzeBusiness_ToleratesMissingFacets(t *testing.T) {
	findings := analyzeBusiness(&model.EvidenceBundle{Company: model.Company{Name: "Sparse"}})
	assert.Empty(t, findings)
}

func TestAnalyzeInfrastructure_ProcurementAndMaturity(t *testing.T) {
	findings := analyzeInfrastructure(fixtureBundle())

	var compliance, maturity bool
	for _, f := range findings {
		if f.HasTag("compliance") {
			compliance = true
		}
		if f.HasTag("process-maturity") {
			maturity = true
		}
	}
	assert.True(t, compliance)
	assert.True(t, maturity, "stack without automation tooling should flag process maturity")
}

func TestAnalyzeInfrastructure_AutomationToolingSuppressesFinding(t *testing.T) {
	b := fixtureBundle()
	b.Technologies = append(b.Technologies, model.Technology{Name: "Salesforce", Category: "crm"})

	for _, f := range analyzeInfrastructure(b) {
		assert.False(t, f.HasTag("process-maturity"))
	}
}
