package pipeline

import (
	"github.com/sells-group/autoscout/internal/model"
)

const verifyInstruction = `Review the prior findings against the evidence.
Adjust the confidence of findings that the evidence contradicts or only
weakly supports, and drop findings that are not grounded in the evidence
at all. Return the full adjusted finding list.`

const (
	// minVerifyConfidence is the floor below which a finding must carry
	// at least two independent sources to survive verification.
	minVerifyConfidence   = 0.35
	minIndependentSources = 2
	// corroborationSources is the source count at which confidence gets
	// boosted.
	corroborationSources = 3
	corroborationBoost   = 1.15
)

// verifyFindings applies the cross-verification rules to the combined
// output of the signal stages: weak under-sourced findings are discarded,
// well-corroborated findings are boosted, and duplicates collapse to the
// higher-confidence instance.
func verifyFindings(findings []model.Finding) []model.Finding {
	byKey := make(map[string]int)
	var out []model.Finding

	for _, f := range findings {
		sources := independentSources(f)

		if f.Confidence < minVerifyConfidence && sources < minIndependentSources {
			continue
		}

		if sources >= corroborationSources {
			f.Confidence = clamp01(f.Confidence * corroborationBoost)
		}

		key := f.DedupeKey()
		if i, seen := byKey[key]; seen {
			if f.Confidence > out[i].Confidence {
				out[i] = f
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, f)
	}

	return out
}

// independentSources counts distinct citation URLs.
func independentSources(f model.Finding) int {
	urls := make(map[string]bool)
	for _, c := range f.Citations {
		if c.URL != "" {
			urls[c.URL] = true
		}
	}
	return len(urls)
}
