package services

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// NormalizeTitle keeps letters, digits and whitespace, collapses runs of
// whitespace, lowercases and trims.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case isLetterOrDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeContent prepares extracted text for the near-identical check:
// whitespace collapsed first, then everything except letters, digits and
// spaces removed, then lowercased.
func NormalizeContent(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	var b strings.Builder
	b.Grow(len(collapsed))
	for _, r := range collapsed {
		if isLetterOrDigit(r) || r == ' ' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.TrimSpace(b.String())
}

// isLetterOrDigit accepts letters and digits of any script.
func isLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Levenshtein is the exact edit distance between s1 and s2 counted in runes.
func Levenshtein(s1, s2 string) int {
	return levenshtein.ComputeDistance(s1, s2)
}

// TitleStringSimilarityPct compares two titles after NormalizeTitle. A title
// with nothing left after normalization only matches the identical string.
func TitleStringSimilarityPct(title1, title2 string) float64 {
	n1, n2 := NormalizeTitle(title1), NormalizeTitle(title2)
	if n1 == "" || n2 == "" {
		if strings.TrimSpace(title1) == strings.TrimSpace(title2) {
			return 100
		}
		return 0
	}
	if n1 == n2 {
		return 100
	}
	return editSimilarityPct(n1, n2)
}

// IsExactTitleMatch reports equality after normalization. Titles that
// normalize to nothing never match.
func IsExactTitleMatch(title1, title2 string) bool {
	n1 := NormalizeTitle(title1)
	return n1 != "" && n1 == NormalizeTitle(title2)
}

// TextSimilarityPct is the edit-distance similarity of two already normalized
// strings. Two empty strings score 0.
func TextSimilarityPct(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	return editSimilarityPct(a, b)
}

func editSimilarityPct(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}
	d := Levenshtein(a, b)
	pct := float64(maxLen-d) / float64(maxLen) * 100
	if pct < 0 {
		return 0
	}
	return pct
}
