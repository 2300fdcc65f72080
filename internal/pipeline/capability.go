package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/internal/model"
	"github.com/sells-group/autoscout/pkg/anthropic"
)

const capabilitySystemPrompt = `You are an automation-opportunity analyst.
You receive structured evidence about one company and a task instruction.
Respond with a JSON array of findings only, no prose. Each finding:
{"title": string, "detail": string, "confidence": number 0-1,
"tags": [string], "sources": [{"title": string, "url": string}]}`

// capabilityStage runs one stage through the analysis capability. Any
// transport error, timeout, open circuit, or unparseable response is
// returned to the caller, which falls back to the deterministic
// implementation.
func (p *Pipeline) capabilityStage(ctx context.Context, stage, instruction string, bundle *model.EvidenceBundle, prior []model.Finding, spent *float64) ([]model.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout())
	defer cancel()

	prompt := buildPrompt(instruction, bundle, prior)

	var resp *anthropic.MessageResponse
	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.cfg.Model,
			MaxTokens: p.cfg.MaxTokens,
			System:    capabilitySystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(p.cfg.Model, stage)
	*spent += p.costs.Claude(p.cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	findings, err := parseFindings(resp.Text())
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// buildPrompt renders the evidence bundle (and any prior findings) into
// the user message for one stage.
func buildPrompt(instruction string, bundle *model.EvidenceBundle, prior []model.Finding) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n## Company\n")
	fmt.Fprintf(&b, "Name: %s\n", bundle.Company.Name)
	if bundle.Company.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", bundle.Company.URL)
	}

	if bundle.Profile != nil {
		b.WriteString("\n## Profile\n")
		b.WriteString(bundle.Profile.Description)
		b.WriteString("\n")
	}
	if len(bundle.Jobs) > 0 {
		b.WriteString("\n## Job postings\n")
		for i, j := range bundle.Jobs {
			if i >= 25 {
				fmt.Fprintf(&b, "... and %d more\n", len(bundle.Jobs)-i)
				break
			}
			fmt.Fprintf(&b, "- %s (%s) %s\n", j.Title, j.Location, j.URL)
		}
	}
	if len(bundle.Technologies) > 0 {
		b.WriteString("\n## Detected technologies\n")
		for _, t := range bundle.Technologies {
			fmt.Fprintf(&b, "- %s [%s]\n", t.Name, t.Category)
		}
	}
	if len(bundle.News) > 0 {
		b.WriteString("\n## News\n")
		for i, n := range bundle.News {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", n.Title, n.URL)
		}
	}
	if len(bundle.SocialProfiles) > 0 {
		b.WriteString("\n## Social\n")
		for _, s := range bundle.SocialProfiles {
			fmt.Fprintf(&b, "- %s: %s\n", s.Network, s.Bio)
		}
	}
	if len(bundle.Procurement) > 0 {
		b.WriteString("\n## Procurement\n")
		for _, r := range bundle.Procurement {
			fmt.Fprintf(&b, "- %s\n", r.Description)
		}
	}

	if len(prior) > 0 {
		b.WriteString("\n## Prior findings\n")
		payload, _ := json.Marshal(prior)
		b.Write(payload)
		b.WriteString("\n")
	}
	return b.String()
}

// rawFinding mirrors the JSON shape the capability is instructed to emit.
type rawFinding struct {
	Title      string   `json:"title"`
	Detail     string   `json:"detail"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags"`
	Sources    []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"sources"`
}

// parseFindings extracts the JSON array from free text and converts it
// into findings. Malformed or empty output is an error so the stage can
// fall back.
func parseFindings(text string) ([]model.Finding, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, eris.New("capability response contains no JSON array")
	}

	var raw []rawFinding
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "capability response is not valid finding JSON")
	}

	findings := make([]model.Finding, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		f := model.Finding{
			Title:      r.Title,
			Detail:     r.Detail,
			Confidence: clamp01(r.Confidence),
			Tags:       r.Tags,
		}
		for _, s := range r.Sources {
			f.Citations = append(f.Citations, model.Citation{Title: s.Title, URL: s.URL})
		}
		findings = append(findings, f)
	}
	if len(findings) == 0 {
		return nil, eris.New("capability response contained no usable findings")
	}
	return findings, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// recentCutoff returns the timestamp bounding "recent" activity windows.
func recentCutoff(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}
