package services

import (
	"math"
	"thesis-verification-api/config"
)

// Match types derived from a similarity percentage.
const (
	MatchTypeExact   = "EXACT_MATCH"
	MatchTypeHigh    = "HIGH_SIMILARITY"
	MatchTypePartial = "PARTIAL_MATCH"
	MatchTypeNone    = "NO_MATCH"
)

// CosineSimilarity returns the cosine of the angle between a and b in [-1, 1].
// Vectors that cannot be compared (nil, empty, different lengths, zero
// magnitude) yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		config.Logger().Debugw("cosine similarity on empty vector", "len_a", len(a), "len_b", len(b))
		return 0
	}
	if len(a) != len(b) {
		config.Logger().Warnw("cosine similarity on mismatched dimensions", "len_a", len(a), "len_b", len(b))
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		config.Logger().Debugw("cosine similarity on zero-magnitude vector")
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, cos))
}

// SimilarityPercentage maps cosine similarity onto [0, 100]. Orthogonal
// vectors land on 50, not 0.
func SimilarityPercentage(a, b []float64) float64 {
	return round2((CosineSimilarity(a, b) + 1) / 2 * 100)
}

// CombinedSimilarity is the weighted mean of the title and content
// percentages. Both weights zero yields 0.
func CombinedSimilarity(titleA, titleB, contentA, contentB []float64, wTitle, wContent float64) float64 {
	total := wTitle + wContent
	if total == 0 {
		return 0
	}
	titleSim := SimilarityPercentage(titleA, titleB)
	contentSim := SimilarityPercentage(contentA, contentB)
	return (titleSim*wTitle + contentSim*wContent) / total
}

// EuclideanDistance returns math.MaxFloat64 when the vectors are not comparable.
func EuclideanDistance(a, b []float64) float64 {
	if !VectorsComparable(a, b) {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// VectorsComparable reports whether both vectors are non-empty and the same length.
func VectorsComparable(a, b []float64) bool {
	return len(a) > 0 && len(a) == len(b)
}

// BatchSimilarities computes SimilarityPercentage of source against each target.
func BatchSimilarities(source []float64, targets [][]float64) []float64 {
	out := make([]float64, len(targets))
	for i, t := range targets {
		out[i] = SimilarityPercentage(source, t)
	}
	return out
}

// MatchTypeForSimilarity labels a similarity percentage.
func MatchTypeForSimilarity(pct float64) string {
	switch {
	case pct >= 95:
		return MatchTypeExact
	case pct >= 75:
		return MatchTypeHigh
	case pct >= 50:
		return MatchTypePartial
	default:
		return MatchTypeNone
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
