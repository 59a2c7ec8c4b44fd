package services

import "math"

// Report match types set by the orchestrator.
const (
	MatchTypeIdenticalContent = "IDENTICAL_CONTENT"
	MatchTypeExactTitle       = "EXACT_TITLE_MATCH"
	MatchTypeOriginalWork     = "ORIGINAL_WORK"
	MatchTypeFirstSubmission  = "FIRST_SUBMISSION"
)

// PlagiarismBand maps a combined similarity percentage onto a plagiarism
// risk percentage. The mapping is monotonic non-decreasing.
func PlagiarismBand(s float64) float64 {
	switch {
	case s >= 95:
		return 100
	case s >= 90:
		return 95 + (s - 90)
	case s >= 80:
		return 85 + (s - 80)
	case s >= 70:
		return 70 + (s - 70)
	case s >= 50:
		return 50 + (s - 50)
	default:
		return math.Max(5, s)
	}
}

// TitleBoost adds the title-match overlay to a banded score, capped at 100.
func TitleBoost(p, titleStringSim float64) float64 {
	switch {
	case titleStringSim >= 95:
		p += 20
	case titleStringSim >= 85:
		p += 15
	case titleStringSim >= 75:
		p += 10
	}
	return math.Min(100, p)
}

// PlagiarismScore applies banding, then the title boost, then clamps to [0, 100].
func PlagiarismScore(s, titleStringSim float64) float64 {
	return clampPct(TitleBoost(PlagiarismBand(s), titleStringSim))
}

// ApplyReportFloors re-asserts the round-number floors on the final report
// and returns the adjusted plagiarism score and match type.
func ApplyReportFloors(similarity, plagiarism float64, matchType string) (float64, string) {
	switch {
	case similarity >= 95:
		return math.Max(plagiarism, 95), MatchTypeIdenticalContent
	case similarity >= 90:
		return math.Max(plagiarism, 90), matchType
	case similarity >= 80:
		return math.Max(plagiarism, 80), matchType
	}
	return plagiarism, matchType
}

// ApplyExactTitleFloor forces at least 90, or 95 when content similarity is
// also at least 80.
func ApplyExactTitleFloor(plagiarism, contentSim float64) float64 {
	floor := 90.0
	if contentSim >= 80 {
		floor = 95
	}
	return math.Max(plagiarism, floor)
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
