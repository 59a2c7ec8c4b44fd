package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeAIContentShortTextScenario(t *testing.T) {
	doc := "As an AI language model, I can summarise how irrigation scheduling affects rice yields. " +
		"The approach compares weekly watering plans across several farms and reports water savings."
	require.Less(t, len(doc), 400)

	res := AnalyzeAIContent(doc, "Irrigation scheduling for rice", "")

	assert.False(t, res.Insufficient)
	assert.Contains(t, res.Indicators, "AI phrase detected: 'as an ai'")
	assert.Equal(t, 0.7, res.ConfidenceFactor)
	assert.Less(t, res.SampleLength, 500)
	assert.Greater(t, res.RawScore, 0.0)
	assert.InDelta(t, res.RawScore*0.7, res.ProbabilityPct, 1e-9)
	assert.Less(t, res.ProbabilityPct, res.RawScore)
}

func TestAnalyzeAIContentInsufficientText(t *testing.T) {
	res := AnalyzeAIContent("too short", "Title", "")

	assert.True(t, res.Insufficient)
	assert.Equal(t, 0.0, res.ProbabilityPct)
	assert.Equal(t, AIConclusionVeryLow, res.Conclusion)
	assert.Empty(t, res.Indicators)
}

func TestAnalyzeAIContentFormulaicConclusion(t *testing.T) {
	doc := strings.Repeat("Field trials in 2021 measured 3.5 tonnes per hectare under drip irrigation. ", 8) +
		"In conclusion, it is evident that the approach improves yields."

	res := AnalyzeAIContent(doc, "Drip irrigation trials", "")

	assert.Contains(t, res.Indicators, "Formulaic conclusion structure detected")
	assert.Equal(t, 12.0, res.SubScores.Structure)
	assert.NotContains(t, res.Indicators, "Lack of specific technical details or examples")
}

func TestAnalyzeAIContentProbabilityBounds(t *testing.T) {
	doc := strings.Repeat("Furthermore, it is worth noting that this comprehensive analysis is unprecedented and revolutionary. ", 80)

	res := AnalyzeAIContent(doc, "Paradigm shift", "A holistic approach to a multifaceted approach.")

	assert.GreaterOrEqual(t, res.ProbabilityPct, 0.0)
	assert.LessOrEqual(t, res.ProbabilityPct, 100.0)
	assert.Equal(t, 1.1, res.ConfidenceFactor)
	assert.Equal(t, ConclusionForProbability(res.ProbabilityPct), res.Conclusion)
	for _, v := range []float64{res.SubScores.Vocabulary, res.SubScores.Style, res.SubScores.Structure, res.SubScores.Consistency, res.SubScores.Authenticity} {
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestConclusionForProbability(t *testing.T) {
	cases := []struct {
		p    float64
		want AIConclusion
	}{
		{100, AIConclusionHigh},
		{80, AIConclusionHigh},
		{79.9, AIConclusionModerate},
		{60, AIConclusionModerate},
		{40, AIConclusionLowModerate},
		{20, AIConclusionLow},
		{19.99, AIConclusionVeryLow},
		{0, AIConclusionVeryLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ConclusionForProbability(tc.p), "p=%v", tc.p)
	}
	assert.True(t, strings.HasPrefix(AIConclusionHigh.Label(), "HIGH PROBABILITY"))
}

func TestAIConclusionJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		C AIConclusion `json:"c"`
	}{AIConclusionLowModerate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"LOW_MODERATE"}`, string(b))
}

func TestCombineTextSourcesSampling(t *testing.T) {
	long := strings.Repeat("a", 20000)
	assert.Len(t, combineTextSources(long, "", ""), 5000+1+2000)

	// midpoint window would overlap the head, so only the head is kept
	medium := strings.Repeat("b", 11000)
	assert.Len(t, combineTextSources(medium, "", ""), 5000)

	short := strings.Repeat("c", 9000)
	assert.Equal(t, "T A "+short, combineTextSources(short, "T", "A"))
}

func TestConfidenceFactor(t *testing.T) {
	assert.Equal(t, 0.7, confidenceFactor(499))
	assert.Equal(t, 0.85, confidenceFactor(500))
	assert.Equal(t, 0.85, confidenceFactor(999))
	assert.Equal(t, 1.0, confidenceFactor(1000))
	assert.Equal(t, 1.0, confidenceFactor(5000))
	assert.Equal(t, 1.1, confidenceFactor(5001))
}
