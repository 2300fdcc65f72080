package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/pkg/anthropic"
)

const synthesizeInstruction = `Write a 2-3 sentence executive
recommendation for an automation-services vendor considering this
company, based on the verified findings and the computed opportunity
score. Respond with the recommendation text only, no JSON.`

// impactMultiplier weights a finding's contribution by its impact tag.
func impactMultiplier(f model.Finding) float64 {
	switch {
	case f.HasTag("impact:high"):
		return 1.5
	case f.HasTag("impact:low"):
		return 0.6
	default:
		return 1.0
	}
}

// effortMultiplier rewards low-effort opportunities.
func effortMultiplier(f model.Finding) float64 {
	switch {
	case f.HasTag("effort:low"):
		return 1.2
	case f.HasTag("effort:high"):
		return 0.8
	default:
		return 1.0
	}
}

// scoreFindings computes the scalar automation-opportunity score in
// [0,10]. Contributions are confidence weighted by impact and effort;
// the sum saturates so a handful of strong findings cannot be outrun by
// volume alone.
func scoreFindings(findings []model.Finding) float64 {
	var raw float64
	for _, f := range findings {
		raw += f.Confidence * impactMultiplier(f) * effortMultiplier(f)
	}
	return 10 * raw / (raw + 4)
}

// recommendation maps a score to its qualitative band.
func recommendation(score float64) string {
	switch {
	case score >= 7.5:
		return "Strong automation candidate: multiple corroborated, high-impact opportunities. Prioritize outreach."
	case score >= 5:
		return "Moderate automation candidate: clear opportunities with some uncertainty. Worth a discovery conversation."
	case score >= 2.5:
		return "Emerging automation candidate: early signals only. Monitor and revisit."
	default:
		return "Limited automation opportunity visible in the current evidence."
	}
}

// synthesize builds the final ordered finding list: one summary finding
// first, then the verified findings by priority (confidence x impact,
// descending). narrative overrides the canned recommendation when the
// capability supplied one.
func synthesize(verified []model.Finding, score float64, narrative string) []model.Finding {
	if narrative == "" {
		narrative = recommendation(score)
	}

	summary := model.Finding{
		Title:      fmt.Sprintf("Automation opportunity score: %.1f/10", score),
		Detail:     fmt.Sprintf("%s (%d verified findings)", narrative, len(verified)),
		Confidence: averageConfidence(verified),
		Tags:       []string{"summary"},
	}

	ordered := make([]model.Finding, len(verified))
	copy(ordered, verified)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi := ordered[i].Confidence * impactMultiplier(ordered[i])
		pj := ordered[j].Confidence * impactMultiplier(ordered[j])
		return pi > pj
	})

	return append([]model.Finding{summary}, ordered...)
}

// synthesizeWithCapability asks the capability for the summary narrative
// only; scoring and ordering stay deterministic.
func (p *Pipeline) synthesizeWithCapability(ctx context.Context, bundle *model.EvidenceBundle, verified []model.Finding, score float64, spent *float64) ([]model.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	prompt := buildPrompt(
		fmt.Sprintf("%s\n\nComputed score: %.1f/10", synthesizeInstruction, score),
		bundle, verified,
	)

	var resp *anthropic.MessageResponse
	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.cfg.Model,
			MaxTokens: p.cfg.MaxTokens,
			System:    "You write concise executive recommendations.",
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(p.cfg.Model, StageSynthesize)
	*spent += p.costs.Claude(p.cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	narrative := strings.TrimSpace(resp.Text())
	return synthesize(verified, score, narrative), nil
}

func averageConfidence(findings []model.Finding) float64 {
	if len(findings) == 0 {
		return 0.5
	}
	var sum float64
	for _, f := range findings {
		sum += f.Confidence
	}
	return sum / float64(len(findings))
}
