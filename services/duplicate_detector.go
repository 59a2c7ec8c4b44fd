package services

import (
	"math"
	"sort"
	"thesis-verification-api/config"
	"thesis-verification-api/models"
	"time"
)

const (
	nearIdenticalLengthRatio = 0.98
	nearIdenticalPrefix      = 1000
	nearIdenticalThreshold   = 95.0
	nearIdenticalLogOnly     = 70.0

	rankedMatchMinCombined  = 25.0
	rankedMatchMinTitleSim  = 75.0
	adminAlertTitleSim      = 80.0
	adminAlertContentSim    = 50.0
	adminAlertCombinedFloor = 85.0
)

// RankedMatch is one corpus document admitted to the ranked list.
type RankedMatch struct {
	PaperID        string    `json:"paper_id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Department     string    `json:"department"`
	Institution    string    `json:"institution"`
	SubmissionDate time.Time `json:"submission_date"`
	Score          float64   `json:"similarity_score"`
	TitleStringSim float64   `json:"title_string_similarity"`
}

// SimilarityResult summarises the comparison of one submission against the
// corpus. It is computed per request and never persisted.
type SimilarityResult struct {
	BestMatch              *models.ResearchPaper
	CombinedSimilarityPct  float64
	TitleEmbeddingSimPct   float64
	ContentEmbeddingSimPct float64
	TitleStringSimPct      float64
	ExactTitleMatch        bool
	RankedMatches          []RankedMatch
}

// FindBestMatch scores every candidate against the submission's title and
// embeddings. Nil embeddings score 0 so the title-string rules still apply.
func FindBestMatch(title string, titleEmb, contentEmb []float64, candidates []models.ResearchPaper) SimilarityResult {
	log := config.Logger()
	result := SimilarityResult{RankedMatches: []RankedMatch{}}

	for i := range candidates {
		paper := &candidates[i]

		exactTitle := IsExactTitleMatch(title, paper.Title)
		titleStringSim := TitleStringSimilarityPct(title, paper.Title)

		var titleSim, contentSim float64
		if pv := paper.TitleVector(); VectorsComparable(titleEmb, pv) {
			titleSim = SimilarityPercentage(titleEmb, pv)
		}
		if pv := paper.ContentVector(); VectorsComparable(contentEmb, pv) {
			contentSim = SimilarityPercentage(contentEmb, pv)
		}

		adjustedContent := contentSim
		switch {
		case exactTitle || titleStringSim >= 95:
			adjustedContent = math.Max(contentSim, 95)
			result.ExactTitleMatch = true
			log.Warnw("exact title match", "title", title, "paper_id", paper.PaperID)
		case titleStringSim >= 85:
			adjustedContent = math.Max(contentSim, math.Min(95, contentSim+25))
			log.Warnw("very similar title", "title", title, "paper_id", paper.PaperID, "title_similarity", titleStringSim)
		case titleStringSim >= 75:
			adjustedContent = math.Max(contentSim, math.Min(90, contentSim+15))
			log.Infow("similar title", "title", title, "paper_id", paper.PaperID, "title_similarity", titleStringSim)
		}

		wTitle, wContent := 0.3, 0.7
		if titleStringSim >= 85 {
			wTitle, wContent = 0.6, 0.4
		}

		combined := titleSim*wTitle + contentSim*wContent
		if titleStringSim >= 75 {
			combined = titleStringSim*wTitle + adjustedContent*wContent
		}
		if titleStringSim >= adminAlertTitleSim && contentSim >= adminAlertContentSim {
			combined = math.Max(combined, adminAlertCombinedFloor)
			log.Warnw("duplicate alert floor applied",
				"paper_id", paper.PaperID,
				"title_similarity", titleStringSim,
				"content_similarity", contentSim,
			)
		}

		if combined > rankedMatchMinCombined || titleStringSim >= rankedMatchMinTitleSim {
			result.RankedMatches = append(result.RankedMatches, RankedMatch{
				PaperID:        paper.PaperID,
				Title:          paper.Title,
				Author:         paper.Author,
				Department:     paper.Department,
				Institution:    paper.Institution,
				SubmissionDate: paper.SubmissionDate,
				Score:          combined,
				TitleStringSim: titleStringSim,
			})
		}

		if combined > result.CombinedSimilarityPct {
			result.BestMatch = paper
			result.CombinedSimilarityPct = combined
			result.TitleEmbeddingSimPct = titleSim
			result.ContentEmbeddingSimPct = adjustedContent
			result.TitleStringSimPct = titleStringSim
		}

		log.Debugw("candidate scored",
			"paper_id", paper.PaperID,
			"title_embedding", titleSim,
			"title_string", titleStringSim,
			"content", contentSim,
			"content_adjusted", adjustedContent,
			"combined", combined,
		)
	}

	sort.SliceStable(result.RankedMatches, func(i, j int) bool {
		return result.RankedMatches[i].Score > result.RankedMatches[j].Score
	})
	return result
}

// FindNearlyIdentical looks for a corpus document whose indexed text has
// almost the same length as text and whose leading characters are nearly the
// same. It returns the first document scoring above 95 and that score.
func FindNearlyIdentical(text string, candidates []models.ResearchPaper) (*models.ResearchPaper, float64) {
	log := config.Logger()
	submitted := []rune(text)
	if len(submitted) == 0 {
		return nil, 0
	}

	for i := range candidates {
		paper := &candidates[i]
		if paper.IndexedText == "" {
			continue
		}
		existing := []rune(paper.IndexedText)

		shorter, longer := len(submitted), len(existing)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if float64(shorter)/float64(longer) <= nearIdenticalLengthRatio {
			continue
		}

		n := nearIdenticalPrefix
		if shorter < n {
			n = shorter
		}
		sim := TextSimilarityPct(
			NormalizeContent(string(submitted[:n])),
			NormalizeContent(string(existing[:n])),
		)

		switch {
		case sim > nearIdenticalThreshold:
			log.Warnw("nearly identical content", "paper_id", paper.PaperID, "similarity", sim)
			return paper, sim
		case sim > nearIdenticalLogOnly:
			log.Infow("moderate prefix similarity, continuing to full scoring", "paper_id", paper.PaperID, "similarity", sim)
		}
	}
	return nil, 0
}
