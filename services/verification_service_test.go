package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"thesis-verification-api/models"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleThesisText = "This study measures how irrigation schedules affect maize yield in the northeastern provinces. " +
	"We collected field data from 42 farms between 2019 and 2023 and compared three watering strategies. " +
	"Farms using soil moisture sensors reduced water use by 18% while yields stayed within 3% of the control group. " +
	"The results suggest that low cost sensors can pay for themselves within two growing seasons."

func newTestVerifier(t *testing.T, corpus *memCorpus, emb Embedder, text string) *VerificationService {
	t.Helper()
	svc := NewVerificationService(VerificationDeps{
		Corpus:    corpus,
		Embedder:  emb,
		Extractor: stubExtractor{text: text},
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func constantEmbedder(v []float64) *stubEmbedder {
	return &stubEmbedder{fn: func(string) []float64 { return v }}
}

func thesisRequest(t *testing.T, title string) VerificationRequest {
	return VerificationRequest{
		Title:       title,
		Author:      "Somchai P.",
		Department:  "Agronomy",
		Institution: "Khon Kaen University",
		FileName:    "thesis.docx",
		Content:     buildDOCX(t, title, sampleThesisText),
	}
}

func TestVerifyFirstSubmission(t *testing.T) {
	svc := newTestVerifier(t, &memCorpus{}, constantEmbedder([]float64{1, 0}), sampleThesisText)

	report, err := svc.Verify(context.Background(), thesisRequest(t, "Sensor Driven Irrigation for Maize"), models.RoleSubmitter)

	require.NoError(t, err)
	assert.Equal(t, MatchTypeFirstSubmission, report.MatchType)
	assert.Zero(t, report.SimilarityPct)
	assert.Zero(t, report.PlagiarismPct)
	assert.False(t, report.Verified)
	require.NotNil(t, report.AIDetection)
	assert.Contains(t, report.Message, ReportDisclaimer)
	assert.Equal(t, ReportDisclaimer, report.Disclaimer)
	assert.Len(t, report.FileHash, 64)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, models.RoleSubmitter, report.ViewerRole)
}

func TestVerifyIdenticalContentShortCircuits(t *testing.T) {
	corpus := &memCorpus{papers: []models.ResearchPaper{{
		PaperID:     "p1",
		Title:       "An Entirely Different Title",
		Author:      "Original Author",
		Institution: "Mahidol University",
		IndexedText: sampleThesisText,
	}}}
	emb := constantEmbedder([]float64{1, 0})
	svc := newTestVerifier(t, corpus, emb, sampleThesisText)

	report, err := svc.Verify(context.Background(), thesisRequest(t, "Sensor Driven Irrigation for Maize"), models.RoleReviewer)

	require.NoError(t, err)
	assert.Equal(t, MatchTypeIdenticalContent, report.MatchType)
	assert.Equal(t, 100.0, report.SimilarityPct)
	assert.Equal(t, 100.0, report.PlagiarismPct)
	assert.Equal(t, 1, report.MatchedPapersCount)
	assert.True(t, report.Verified)
	assert.Nil(t, report.AIDetection)
	assert.Zero(t, emb.calls.Load())
	require.NotNil(t, report.BestMatch)
	assert.Equal(t, "p1", report.BestMatch.PaperID)
	assert.Contains(t, report.Message, "Original Author")
}

func TestVerifyExactTitleReviewerAndSubmitterViews(t *testing.T) {
	title := "Deep Learning for Crop Yield Prediction"
	corpus := &memCorpus{}
	for i := 1; i <= 7; i++ {
		corpus.papers = append(corpus.papers, corpusPaper(fmt.Sprintf("p%d", i), title, []float64{0, 1}, []float64{0, 1}))
	}
	svc := newTestVerifier(t, corpus, constantEmbedder([]float64{1, 0}), sampleThesisText)
	req := thesisRequest(t, title)

	reviewer, err := svc.Verify(context.Background(), req, models.RoleReviewer)
	require.NoError(t, err)
	assert.Equal(t, MatchTypeExactTitle, reviewer.MatchType)
	assert.True(t, reviewer.Verified)
	assert.True(t, reviewer.ExactTitleMatch)
	assert.GreaterOrEqual(t, reviewer.PlagiarismPct, 90.0)
	assert.Equal(t, 7, reviewer.MatchedPapersCount)
	assert.Equal(t, 7, reviewer.RankedMatchCount)
	assert.Len(t, reviewer.TopMatches, 5)
	require.NotNil(t, reviewer.BestMatch)
	assert.Equal(t, "p1", reviewer.BestMatch.PaperID)
	assert.Contains(t, reviewer.Message, "Author p1")
	assert.Contains(t, reviewer.Message, "Institute p1")

	submitter, err := svc.Verify(context.Background(), req, "guest")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSubmitter, submitter.ViewerRole)
	assert.Equal(t, reviewer.PlagiarismPct, submitter.PlagiarismPct)
	assert.Nil(t, submitter.BestMatch)
	assert.Empty(t, submitter.TopMatches)
	assert.NotContains(t, submitter.Message, "Author p1")
	assert.Contains(t, submitter.Message, "Plagiarism Risk")
	assert.True(t, submitter.IsBlocking(70))
}

func TestVerifyDegradesWhenEmbeddingsUnavailable(t *testing.T) {
	title := "Deep Learning for Crop Yield Prediction"
	corpus := &memCorpus{papers: []models.ResearchPaper{
		corpusPaper("p1", title, []float64{0, 1}, []float64{0, 1}),
	}}
	emb := &stubEmbedder{err: fmt.Errorf("%w: dial tcp: refused", ErrEmbeddingUnavailable)}
	svc := newTestVerifier(t, corpus, emb, sampleThesisText)

	report, err := svc.Verify(context.Background(), thesisRequest(t, title), models.RoleReviewer)

	require.NoError(t, err)
	assert.Equal(t, []string{DegradedEmbedding}, report.Degraded)
	assert.Equal(t, MatchTypeExactTitle, report.MatchType)
	assert.Zero(t, report.TitleEmbeddingSimPct)
	assert.InDelta(t, 98.0, report.SimilarityPct, 1e-9)
	assert.NotNil(t, report.AIDetection)
}

func TestVerifyOriginalWork(t *testing.T) {
	corpus := &memCorpus{papers: []models.ResearchPaper{
		corpusPaper("p1", "Medieval Trade Routes of the Baltic Sea", []float64{-1, 0}, []float64{-1, 0}),
	}}
	svc := newTestVerifier(t, corpus, constantEmbedder([]float64{1, 0}), sampleThesisText)

	report, err := svc.Verify(context.Background(), thesisRequest(t, "Sensor Driven Irrigation for Maize"), models.RoleReviewer)

	require.NoError(t, err)
	assert.Equal(t, MatchTypeOriginalWork, report.MatchType)
	assert.Zero(t, report.PlagiarismPct)
	assert.False(t, report.Verified)
	assert.Nil(t, report.BestMatch)
	assert.Contains(t, report.Message, "No similar research found")
	assert.False(t, report.IsBlocking(70))
}

func TestVerifyValidation(t *testing.T) {
	svc := newTestVerifier(t, &memCorpus{}, nil, sampleThesisText)
	ctx := context.Background()
	var verr *ValidationError

	req := thesisRequest(t, "   ")
	_, err := svc.Verify(ctx, req, models.RoleReviewer)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	req = thesisRequest(t, "A Title")
	req.Author = ""
	_, err = svc.Verify(ctx, req, models.RoleReviewer)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "author", verr.Field)

	req = thesisRequest(t, "A Title")
	req.FileName = "thesis.doc"
	_, err = svc.Verify(ctx, req, models.RoleReviewer)
	require.True(t, errors.As(err, &verr))
}

func TestVerifyExtractionFailureIsValidationError(t *testing.T) {
	svc := NewVerificationService(VerificationDeps{
		Corpus:    &memCorpus{},
		Extractor: stubExtractor{err: errors.New("corrupt archive")},
	})

	_, err := svc.Verify(context.Background(), thesisRequest(t, "A Title"), models.RoleReviewer)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Msg, "corrupt archive")
}

func TestVerifyServesRepeatUploadsFromCache(t *testing.T) {
	cache := newMemReportCache()
	emb := constantEmbedder([]float64{1, 0})
	svc := NewVerificationService(VerificationDeps{
		Corpus:    &memCorpus{},
		Embedder:  emb,
		Extractor: stubExtractor{text: sampleThesisText},
		Cache:     cache,
	})
	req := thesisRequest(t, "Sensor Driven Irrigation for Maize")

	first, err := svc.Verify(context.Background(), req, models.RoleReviewer)
	require.NoError(t, err)
	second, err := svc.Verify(context.Background(), req, models.RoleReviewer)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, int32(2), emb.calls.Load())

	// another role never reads the reviewer's entry
	_, err = svc.Verify(context.Background(), req, models.RoleSubmitter)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestAnalyzeKeepsArtefacts(t *testing.T) {
	svc := newTestVerifier(t, &memCorpus{}, constantEmbedder([]float64{0.6, 0.8}), sampleThesisText)

	out, err := svc.Analyze(context.Background(), thesisRequest(t, "Sensor Driven Irrigation for Maize"), models.RoleReviewer)

	require.NoError(t, err)
	assert.Equal(t, sampleThesisText, out.Text)
	assert.Equal(t, []float64{0.6, 0.8}, out.TitleEmbedding)
	assert.Equal(t, []float64{0.6, 0.8}, out.ContentEmbedding)
	assert.Equal(t, "stub-embed", out.EmbeddingModel)
	assert.Equal(t, models.MimeDOCX, out.MimeType)
}

func TestSearchPapers(t *testing.T) {
	corpus := &memCorpus{papers: []models.ResearchPaper{
		{PaperID: "p1", Title: "Crop Yield Forecasting", Author: "Anan K.", FileHash: "hash-1", LedgerTxID: "tx-1"},
		{PaperID: "p2", Title: "Rice Disease Detection", Author: "Suda W.", FileHash: "hash-2", LedgerTxID: "tx-2"},
	}}
	svc := newTestVerifier(t, corpus, nil, "")
	ctx := context.Background()

	got, err := svc.SearchPapers(ctx, SearchQuery{Hash: "hash-2", Title: "crop"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].PaperID)

	got, err = svc.SearchPapers(ctx, SearchQuery{TxID: " tx-1 "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PaperID)

	got, err = svc.SearchPapers(ctx, SearchQuery{Hash: "missing", Author: "suda"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].PaperID)

	got, err = svc.SearchPapers(ctx, SearchQuery{Hash: "missing"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.SearchPapers(ctx, SearchQuery{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestReportIsBlocking(t *testing.T) {
	cases := []struct {
		name   string
		report VerificationReport
		want   bool
	}{
		{"identical", VerificationReport{MatchType: MatchTypeIdenticalContent}, true},
		{"exact title", VerificationReport{MatchType: MatchTypeExactTitle, PlagiarismPct: 10}, true},
		{"high plagiarism", VerificationReport{MatchType: MatchTypeHigh, PlagiarismPct: 70}, true},
		{"below threshold", VerificationReport{MatchType: MatchTypePartial, PlagiarismPct: 69.9}, false},
		{"original", VerificationReport{MatchType: MatchTypeOriginalWork}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.report.IsBlocking(70))
		})
	}
	var nilReport *VerificationReport
	assert.False(t, nilReport.IsBlocking(70))
}

func TestScoredReportMessagesNameMatchOnlyForReviewers(t *testing.T) {
	paper := &models.ResearchPaper{PaperID: "p9", Title: "Soil Carbon Mapping", Author: "Dara N.", Institution: "CMU", Department: "Soil Science"}
	sim := SimilarityResult{BestMatch: paper, CombinedSimilarityPct: 88, TitleStringSimPct: 40, ContentEmbeddingSimPct: 88}

	rev := scoredReport(&VerificationReport{ViewerRole: models.RoleReviewer}, sim, 3, nil)
	sub := scoredReport(&VerificationReport{ViewerRole: models.RoleSubmitter}, sim, 3, nil)

	assert.True(t, strings.HasPrefix(rev.Message, "HIGH PLAGIARISM RISK") || strings.HasPrefix(rev.Message, "SEVERE"))
	assert.Contains(t, rev.Message, "Soil Carbon Mapping")
	assert.NotContains(t, sub.Message, "Soil Carbon Mapping")
	assert.NotContains(t, sub.Message, "Dara N.")
	assert.Equal(t, rev.PlagiarismPct, sub.PlagiarismPct)
	assert.True(t, rev.Verified)
	assert.Contains(t, rev.Message, "AI Detection: skipped")
}
