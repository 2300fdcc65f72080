package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/autoscout/internal/model"
)

const technicalInstruction = `Inspect the job postings and detected
technologies for manual-process indicators (roles built around data entry,
spreadsheets, reconciliation, repetitive clerical work) and legacy
technology that suggests automatable workflows. Emit one finding per
distinct signal, tagged with impact:* and effort:* estimates.`

// manualProcessTerms flag job postings whose day-to-day work is a
// candidate for automation.
var manualProcessTerms = []string{
	"data entry",
	"manual",
	"spreadsheet",
	"copy and paste",
	"copy-paste",
	"reconciliation",
	"invoice processing",
	"order processing",
	"filing",
	"back office",
	"repetitive",
	"transcription",
}

// legacyPlatforms are stack entries that usually anchor manual or
// brittle processes around them.
var legacyPlatforms = []string{
	"wordpress",
	"drupal 7",
	"jquery",
	"vbscript",
	"visual basic",
	"microsoft access",
	"lotus notes",
	"foxpro",
	"cobol",
	"as/400",
	"sharepoint 2013",
	"coldfusion",
}

// analyzeTechnical is the deterministic technical-signal stage.
func analyzeTechnical(bundle *model.EvidenceBundle) []model.Finding {
	var findings []model.Finding

	// Manual-process roles in hiring.
	var matched []model.JobPosting
	termHits := make(map[string]bool)
	for _, job := range bundle.Jobs {
		text := strings.ToLower(job.Title + " " + job.Description)
		for _, term := range manualProcessTerms {
			if strings.Contains(text, term) {
				matched = append(matched, job)
				termHits[term] = true
				break
			}
		}
	}
	if len(matched) > 0 {
		f := model.Finding{
			Title: "Active hiring for manual-process roles",
			Detail: fmt.Sprintf("%d of %d open roles center on manual work (%s), indicating workflows that lend themselves to automation.",
				len(matched), len(bundle.Jobs), joinSorted(termHits)),
			Confidence: capConfidence(0.45 + 0.1*float64(len(matched))),
			Tags:       []string{"manual-process", "impact:high", "effort:low"},
		}
		for i, job := range matched {
			if i >= 3 {
				break
			}
			f.Citations = append(f.Citations, model.Citation{Title: job.Title, URL: job.URL, Date: job.PostedAt})
		}
		findings = append(findings, f)
	}

	// Legacy platforms in the detected stack.
	for _, tech := range bundle.Technologies {
		name := strings.ToLower(tech.Name)
		for _, legacy := range legacyPlatforms {
			if strings.Contains(name, legacy) {
				findings = append(findings, model.Finding{
					Title: "Legacy platform in production: " + tech.Name,
					Detail: fmt.Sprintf("%s (%s) suggests aging workflows with integration and migration opportunities.",
						tech.Name, tech.Category),
					Confidence: 0.6,
					Tags:       []string{"legacy-tech", "impact:medium", "effort:medium"},
					Citations:  profileCitation(bundle),
				})
				break
			}
		}
	}

	// Hiring volume as an operational-load proxy.
	if len(bundle.Jobs) >= 10 {
		findings = append(findings, model.Finding{
			Title: "High-volume operational hiring",
			Detail: fmt.Sprintf("%d simultaneous openings point at throughput being solved with headcount rather than tooling.",
				len(bundle.Jobs)),
			Confidence: 0.5,
			Tags:       []string{"scaling", "impact:medium", "effort:medium"},
		})
	}

	return findings
}

func capConfidence(v float64) float64 {
	if v > 0.9 {
		return 0.9
	}
	return v
}

func joinSorted(set map[string]bool) string {
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	// Small sets only; insertion sort keeps the output stable.
	for i := 1; i < len(terms); i++ {
		for j := i; j > 0 && terms[j] < terms[j-1]; j-- {
			terms[j], terms[j-1] = terms[j-1], terms[j]
		}
	}
	return strings.Join(terms, ", ")
}

func profileCitation(bundle *model.EvidenceBundle) []model.Citation {
	if bundle.Profile == nil || bundle.Profile.SourceURL == "" {
		return nil
	}
	return []model.Citation{{Title: bundle.Company.Name + " profile", URL: bundle.Profile.SourceURL}}
}
