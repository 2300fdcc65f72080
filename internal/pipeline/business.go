package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/autoscout/internal/model"
)

const businessInstruction = `Inspect the corporate profile, news coverage
and social presence. Classify the business model (enterprise-facing vs
consumer-facing) and assess growth velocity. Emit findings describing the
classification and any growth signals relevant to automation readiness.`

var enterpriseTerms = []string{
	"b2b", "enterprise", "saas", "platform", "api",
	"procurement", "compliance", "wholesale", "logistics", "integration",
}

var consumerTerms = []string{
	"b2c", "consumer", "retail", "shopper", "subscription",
	"app store", "d2c", "e-commerce", "storefront",
}

// analyzeBusiness is the deterministic business-context stage.
func analyzeBusiness(bundle *model.EvidenceBundle) []model.Finding {
	var findings []model.Finding

	text := businessText(bundle)
	entScore := countTerms(text, enterpriseTerms)
	conScore := countTerms(text, consumerTerms)

	if entScore+conScore > 0 {
		modelTag, title := "business-model:mixed", "Mixed business model"
		margin := abs(entScore - conScore)
		if entScore > conScore {
			modelTag, title = "business-model:b2b", "Enterprise-facing business model"
		} else if conScore > entScore {
			modelTag, title = "business-model:b2c", "Consumer-facing business model"
		}
		findings = append(findings, model.Finding{
			Title: title,
			Detail: fmt.Sprintf("Evidence text carries %d enterprise-facing and %d consumer-facing indicators.",
				entScore, conScore),
			Confidence: capConfidence(0.4 + 0.1*float64(margin)),
			Tags:       []string{modelTag, "impact:low", "effort:low"},
			Citations:  profileCitation(bundle),
		})
	}

	// Growth velocity from recent coverage.
	cutoff := recentCutoff(90)
	recent := 0
	var cites []model.Citation
	for _, n := range bundle.News {
		if n.PublishedAt != nil && n.PublishedAt.After(cutoff) {
			recent++
			if len(cites) < 3 {
				cites = append(cites, model.Citation{Title: n.Title, URL: n.URL, Date: n.PublishedAt})
			}
		}
	}
	if recent >= 3 {
		findings = append(findings, model.Finding{
			Title: "Elevated growth velocity",
			Detail: fmt.Sprintf("%d news mentions in the last 90 days; growing organizations feel manual-process pain soonest.",
				recent),
			Confidence: capConfidence(0.4 + 0.05*float64(recent)),
			Tags:       []string{"growth", "impact:medium", "effort:low"},
			Citations:  cites,
		})
	}

	return findings
}

func businessText(bundle *model.EvidenceBundle) string {
	var b strings.Builder
	if bundle.Profile != nil {
		b.WriteString(bundle.Profile.Description)
		b.WriteString(" ")
		b.WriteString(bundle.Profile.Industry)
		b.WriteString(" ")
	}
	for _, n := range bundle.News {
		b.WriteString(n.Title)
		b.WriteString(" ")
		b.WriteString(n.Snippet)
		b.WriteString(" ")
	}
	for _, s := range bundle.SocialProfiles {
		b.WriteString(s.Bio)
		b.WriteString(" ")
	}
	return strings.ToLower(b.String())
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		n += strings.Count(text, t)
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
