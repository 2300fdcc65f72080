package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/autoscout/internal/model"
)

const infrastructureInstruction = `Inspect the breadth and depth of the
technology stack and the procurement history. Assess process maturity and
identify compliance-automation opportunities. Emit findings on tool
sprawl, missing workflow tooling, and compliance burden.`

// automationCategories mark stack entries that already automate
// workflows; their absence is itself a signal.
var automationCategories = []string{
	"automation", "workflow", "rpa", "crm", "erp", "integration",
}

// analyzeInfrastructure is the deterministic infrastructure-depth stage.
func analyzeInfrastructure(bundle *model.EvidenceBundle) []model.Finding {
	var findings []model.Finding

	categories := make(map[string]bool)
	hasAutomation := false
	for _, t := range bundle.Technologies {
		cat := strings.ToLower(t.Category)
		categories[cat] = true
		for _, ac := range automationCategories {
			if strings.Contains(cat, ac) || strings.Contains(strings.ToLower(t.Name), ac) {
				hasAutomation = true
			}
		}
	}

	if len(bundle.Technologies) >= 8 {
		findings = append(findings, model.Finding{
			Title: "Broad tool sprawl",
			Detail: fmt.Sprintf("%d detected technologies across %d categories; fragmented stacks accumulate manual hand-offs between tools.",
				len(bundle.Technologies), len(categories)),
			Confidence: 0.55,
			Tags:       []string{"integration", "impact:medium", "effort:medium"},
		})
	}

	if len(bundle.Technologies) > 0 && !hasAutomation {
		findings = append(findings, model.Finding{
			Title:      "No workflow automation tooling detected",
			Detail:     "The visible stack includes no CRM, ERP, RPA or workflow platform, suggesting low process maturity.",
			Confidence: 0.5,
			Tags:       []string{"process-maturity", "impact:high", "effort:medium"},
		})
	}

	if len(bundle.Procurement) > 0 {
		f := model.Finding{
			Title: "Public-sector procurement footprint",
			Detail: fmt.Sprintf("%d public procurement records imply recurring compliance reporting that is routinely automatable.",
				len(bundle.Procurement)),
			Confidence: capConfidence(0.45 + 0.05*float64(len(bundle.Procurement))),
			Tags:       []string{"compliance", "impact:medium", "effort:low"},
		}
		for i, r := range bundle.Procurement {
			if i >= 3 {
				break
			}
			f.Citations = append(f.Citations, model.Citation{Title: r.Description, URL: r.URL, Date: r.AwardedAt})
		}
		findings = append(findings, f)
	}

	return findings
}
