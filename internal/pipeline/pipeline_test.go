package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/config"
)

func testAIConfig() config.AnthropicConfig {
	return config.AnthropicConfig{
		Key:         "test-key",
		Model:       "claude-haiku-4-5-20251001",
		MaxTokens:   1024,
		TimeoutSecs: 5,
	}
}

func TestRun_DeterministicOnly(t *testing.T) {
	p := New(nil, config.AnthropicConfig{})
	run, err := p.Run(context.Background(), fixtureBundle())
	require.NoError(t, err)

	require.Len(t, run.Stages, 5)
	for _, s := range run.Stages {
		assert.True(t, s.Fallback, "stage %s should use the deterministic path", s.Name)
	}
	assert.Equal(t, StageTechnical, run.Stages[0].Name)
	assert.Equal(t, StageVerify, run.Stages[3].Name)
	assert.Equal(t, StageSynthesize, run.Stages[4].Name)

	require.NotEmpty(t, run.Findings)
	assert.True(t, run.Findings[0].HasTag("summary"))
	assert.True(t, run.Score > 0 && run.Score <= 10)
	for _, f := range run.Findings {
		assert.True(t, f.Confidence >= 0 && f.Confidence <= 1)
	}
}

func TestRun_CapabilityFailureDegradesNotAborts(t *testing.T) {
	p := New(failingAI{}, testAIConfig())
	run, err := p.Run(context.Background(), fixtureBundle())
	require.NoError(t, err)

	require.Len(t, run.Stages, 5)
	for _, s := range run.Stages {
		assert.True(t, s.Fallback)
		assert.NotEmpty(t, s.Error)
	}
	// The deterministic fallbacks still produce findings.
	assert.NotEmpty(t, run.Findings)
	assert.NotEmpty(t, run.StageFindings(StageTechnical))
}

func TestRun_PerStageFallbackIndependence(t *testing.T) {
	// Stage 1 succeeds through the capability; stage 2 fails and must
	// fall back without affecting stage 1's result.
	ai := &mockAI{responses: []mockResponse{
		{text: `[{"title":"AI technical finding","detail":"x","confidence":0.8,"tags":["manual-process","impact:high"],"sources":[{"title":"s","url":"https://a.test"}]}]`},
		{err: eris.New("timeout")},
		{text: `[{"title":"AI infra finding","confidence":0.6,"tags":["compliance"]}]`},
		{text: `[{"title":"AI technical finding","detail":"x","confidence":0.85,"tags":["manual-process","impact:high"]}]`},
		{text: "Narrative from the capability."},
	}}

	p := New(ai, testAIConfig())
	run, err := p.Run(context.Background(), fixtureBundle())
	require.NoError(t, err)

	assert.False(t, run.Stages[0].Fallback)
	assert.Equal(t, "AI technical finding", run.Stages[0].Findings[0].Title)
	assert.True(t, run.Stages[1].Fallback, "stage 2 must fall back independently")
	assert.False(t, run.Stages[2].Fallback)
	assert.False(t, run.Stages[3].Fallback)
	assert.False(t, run.Stages[4].Fallback)
	assert.Contains(t, run.Findings[0].Detail, "Narrative from the capability.")
}

func TestRun_MalformedCapabilityOutputFallsBack(t *testing.T) {
	ai := &mockAI{responses: []mockResponse{
		{text: "I could not produce JSON, sorry."},
		{text: "not json either"},
		{text: "[]"},
		{text: "{}"},
		{err: eris.New("overloaded")},
	}}
	p := New(ai, testAIConfig())
	run, err := p.Run(context.Background(), fixtureBundle())
	require.NoError(t, err)
	for _, s := range run.Stages {
		assert.True(t, s.Fallback, "stage %s", s.Name)
	}
	assert.NotEmpty(t, run.Findings)
}

func TestRun_NilBundle(t *testing.T) {
	p := New(nil, config.AnthropicConfig{})
	_, err := p.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestParseFindings(t *testing.T) {
	text := `Here are the findings:
[{"title":"A","confidence":1.4,"tags":["x"]},{"title":"","confidence":0.5},{"title":"B","confidence":-1}]`
	findings, err := parseFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, 1.0, findings[0].Confidence, "confidence clamps to [0,1]")
	assert.Equal(t, 0.0, findings[1].Confidence)
}

func TestParseFindings_NoArray(t *testing.T) {
	_, err := parseFindings("no structured output here")
	assert.Error(t, err)
}

func TestParseFindings_EmptyArray(t *testing.T) {
	_, err := parseFindings("[]")
	assert.Error(t, err)
}
