package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autoscout/internal/model"
)

func cite(urls ...string) []model.Citation {
	out := make([]model.Citation, len(urls))
	for i, u := range urls {
		out[i] = model.Citation{Title: "src", URL: u}
	}
	return out
}

func TestVerify_DiscardsWeakUnderSourced(t *testing.T) {
	in := []model.Finding{
		{Title: "weak and unsourced", Confidence: 0.2, Citations: cite("https://a.test")},
		{Title: "weak but sourced", Confidence: 0.2, Citations: cite("https://a.test", "https://b.test")},
		{Title: "strong and unsourced", Confidence: 0.8},
	}
	out := verifyFindings(in)
	require.Len(t, out, 2)
	assert.Equal(t, "weak but sourced", out[0].Title)
	assert.Equal(t, "strong and unsourced", out[1].Title)
}

func TestVerify_BoostsCorroborated(t *testing.T) {
	in := []model.Finding{
		{Title: "corroborated", Confidence: 0.6, Citations: cite("https://a.test", "https://b.test", "https://c.test")},
	}
	out := verifyFindings(in)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.69, out[0].Confidence, 0.001)
}

func TestVerify_BoostClampsAtOne(t *testing.T) {
	in := []model.Finding{
		{Title: "near certain", Confidence: 0.95, Citations: cite("https://a.test", "https://b.test", "https://c.test")},
	}
	out := verifyFindings(in)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Confidence)
}

func TestVerify_DuplicateSameURLsNotIndependent(t *testing.T) {
	in := []model.Finding{
		{Title: "weak", Confidence: 0.2, Citations: cite("https://a.test", "https://a.test")},
	}
	assert.Empty(t, verifyFindings(in))
}

func TestVerify_DedupeKeepsHigherConfidence(t *testing.T) {
	in := []model.Finding{
		{Title: "Legacy platform", Confidence: 0.5, Tags: []string{"legacy-tech"}},
		{Title: "Legacy platform", Confidence: 0.7, Tags: []string{"legacy-tech"}},
	}
	out := verifyFindings(in)
	require.Len(t, out, 1)
	assert.Equal(t, 0.7, out[0].Confidence)
}

func TestScoreFindings_BoundedAndMonotone(t *testing.T) {
	assert.Zero(t, scoreFindings(nil))

	one := scoreFindings([]model.Finding{
		{Title: "a", Confidence: 0.8, Tags: []string{"impact:high", "effort:low"}},
	})
	many := scoreFindings([]model.Finding{
		{Title: "a", Confidence: 0.8, Tags: []string{"impact:high", "effort:low"}},
		{Title: "b", Confidence: 0.7, Tags: []string{"impact:medium"}},
		{Title: "c", Confidence: 0.6, Tags: []string{"impact:high"}},
	})
	assert.Greater(t, many, one)
	assert.Less(t, many, 10.0)
	assert.Greater(t, one, 0.0)
}

func TestSynthesize_SummaryFirstThenByPriority(t *testing.T) {
	verified := []model.Finding{
		{Title: "low", Confidence: 0.9, Tags: []string{"impact:low"}},
		{Title: "high", Confidence: 0.7, Tags: []string{"impact:high"}},
	}
	out := synthesize(verified, 6.2, "")
	require.Len(t, out, 3)
	assert.True(t, out[0].HasTag("summary"))
	assert.Contains(t, out[0].Title, "6.2/10")
	// 0.7*1.5 > 0.9*0.6
	assert.Equal(t, "high", out[1].Title)
	assert.Equal(t, "low", out[2].Title)
}

func TestSynthesize_NarrativeOverride(t *testing.T) {
	out := synthesize(nil, 1.0, "Custom narrative.")
	require.NotEmpty(t, out)
	assert.Contains(t, out[0].Detail, "Custom narrative.")
}

func TestRecommendation_Bands(t *testing.T) {
	assert.Contains(t, recommendation(8.0), "Strong")
	assert.Contains(t, recommendation(6.0), "Moderate")
	assert.Contains(t, recommendation(3.0), "Emerging")
	assert.Contains(t, recommendation(1.0), "Limited")
}
