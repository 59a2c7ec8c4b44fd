package services

import (
	"strings"
	"testing"
	"thesis-verification-api/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_LevenshteinIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("levenshtein(s, s) == 0", prop.ForAll(
		func(s string) bool {
			return Levenshtein(s, s) == 0
		},
		gen.AnyString(),
	))
	properties.Property("titleStringSimilarityPct(s, s) == 100", prop.ForAll(
		func(s string) bool {
			return TitleStringSimilarityPct(s, s) == 100.0
		},
		gen.AnyString(),
	))
	properties.Property("levenshtein is symmetric", prop.ForAll(
		func(a, b string) bool {
			return Levenshtein(a, b) == Levenshtein(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestLevenshteinKnownDistances(t *testing.T) {
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 1, Levenshtein("flaw", "flow"))
	assert.Equal(t, 1, Levenshtein("naïve", "naive"))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "deeplearning for crop yield", NormalizeTitle("  Deep-Learning:  For \t CROP yield! "))
	assert.Equal(t, "", NormalizeTitle("?!"))
	assert.True(t, IsExactTitleMatch("Crop Yield, Prediction.", "crop   yield prediction"))
	assert.False(t, IsExactTitleMatch("Crop Yield", "Crop Yields"))
}

func TestNormalizeTitleKeepsNonLatinScripts(t *testing.T) {
	assert.Equal(t, "влияние климата на урожай 2021", NormalizeTitle("Влияние климата на урожай, 2021!"))
	assert.Equal(t, "機械学習", NormalizeTitle("機械学習。"))

	assert.False(t, IsExactTitleMatch("Влияние климата на урожай", "Обучение химии студентов"))
	assert.Less(t, TitleStringSimilarityPct("Влияние климата на урожай", "Обучение химии студентов"), 75.0)
	assert.True(t, IsExactTitleMatch("Влияние климата на урожай", "влияние  КЛИМАТА на урожай."))
}

func TestEmptyNormalizedTitlesDoNotMatch(t *testing.T) {
	assert.False(t, IsExactTitleMatch("?!", "..."))
	assert.False(t, IsExactTitleMatch("", ""))
	assert.Equal(t, 0.0, TitleStringSimilarityPct("?!", "..."))
	assert.Equal(t, 0.0, TitleStringSimilarityPct("", "Crop Yield"))
	assert.Equal(t, 100.0, TitleStringSimilarityPct("?!", "?!"))
}

func TestTitleStringSimilarityPct(t *testing.T) {
	assert.Equal(t, 100.0, TitleStringSimilarityPct("", ""))
	assert.Equal(t, 0.0, TitleStringSimilarityPct("abc", ""))
	// "crop yield" vs "crop yields": one insertion over 11 characters
	assert.InDelta(t, 10.0/11.0*100, TitleStringSimilarityPct("Crop Yield", "Crop Yields"), 1e-9)
}

func TestTextSimilarityPct(t *testing.T) {
	assert.Equal(t, 0.0, TextSimilarityPct("", ""))
	assert.Equal(t, 100.0, TextSimilarityPct("same text", "same text"))
	assert.InDelta(t, 75.0, TextSimilarityPct("abcd", "abcx"), 1e-9)
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "hello world 2024", NormalizeContent("Hello,\n\n  World!\t2024."))
	assert.Equal(t, "привет мир 2024", NormalizeContent("Привет,\n мир!\t2024."))
}

func TestFindNearlyIdentical(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)

	t.Run("identical text short-circuits", func(t *testing.T) {
		corpus := []models.ResearchPaper{
			{PaperID: "other", IndexedText: strings.Repeat("Lorem ipsum dolor sit amet, consectetur. ", 55)},
			{PaperID: "copy", IndexedText: strings.ToUpper(text)},
		}
		paper, sim := FindNearlyIdentical(text, corpus)
		require.NotNil(t, paper)
		assert.Equal(t, "copy", paper.PaperID)
		assert.Equal(t, 100.0, sim)
	})

	t.Run("length outside two percent is skipped", func(t *testing.T) {
		corpus := []models.ResearchPaper{
			{PaperID: "longer", IndexedText: text + strings.Repeat("x", len(text)/10)},
		}
		paper, _ := FindNearlyIdentical(text, corpus)
		assert.Nil(t, paper)
	})

	t.Run("moderate overlap does not short-circuit", func(t *testing.T) {
		edited := []rune(text)
		for i := 0; i < len(edited); i += 8 {
			edited[i] = 'z'
		}
		corpus := []models.ResearchPaper{{PaperID: "edited", IndexedText: string(edited)}}
		paper, sim := FindNearlyIdentical(text, corpus)
		assert.Nil(t, paper)
		assert.Equal(t, 0.0, sim)
	})

	t.Run("unrelated non-latin texts of equal shape are not identical", func(t *testing.T) {
		submitted := strings.Repeat("мама мыла раму 2021 ", 80)
		existing := strings.Repeat("рыба пела реку 2021 ", 80)
		corpus := []models.ResearchPaper{{PaperID: "ru", IndexedText: existing}}

		paper, sim := FindNearlyIdentical(submitted, corpus)
		assert.Nil(t, paper)
		assert.Less(t, sim, 95.0)
	})

	t.Run("copied non-latin text short-circuits", func(t *testing.T) {
		submitted := strings.Repeat("мама мыла раму 2021 ", 80)
		corpus := []models.ResearchPaper{{PaperID: "ru", IndexedText: strings.ToUpper(submitted)}}

		paper, sim := FindNearlyIdentical(submitted, corpus)
		require.NotNil(t, paper)
		assert.Equal(t, 100.0, sim)
	})

	t.Run("records without indexed text are ignored", func(t *testing.T) {
		paper, _ := FindNearlyIdentical(text, []models.ResearchPaper{{PaperID: "empty"}})
		assert.Nil(t, paper)
	})
}
