package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"thesis-verification-api/config"
	"thesis-verification-api/models"
	"thesis-verification-api/utils"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Verification states, in pipeline order.
const (
	StateValidating       = "VALIDATING"
	StateHashing          = "HASHING"
	StateIdenticalCheck   = "IDENTICAL_CHECK"
	StateEmbeddingCompare = "EMBEDDING_COMPARE"
	StateScoring          = "SCORING"
	StateReported         = "REPORTED"
)

const (
	topMatchLimit          = 5
	originalWorkThreshold  = 15.0
	verifiedThreshold      = 75.0
	exactTitleStringThresh = 95.0

	DegradedEmbedding = "embedding_unavailable"

	ReportDisclaimer = "Similarity, plagiarism and AI-detection figures are best-effort heuristic estimates, not findings of misconduct."
)

// VerificationRequest is one uploaded document plus its declared metadata.
type VerificationRequest struct {
	Title          string
	Author         string
	Department     string
	Institution    string
	Supervisor     string
	SubmissionYear int
	AbstractText   string
	Keywords       []string
	FileName       string
	Content        []byte
}

// MatchedPaper is the corpus record disclosed to reviewers.
type MatchedPaper struct {
	PaperID        string    `json:"paper_id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Department     string    `json:"department"`
	Institution    string    `json:"institution"`
	SubmissionDate time.Time `json:"submission_date"`
	LedgerTxID     string    `json:"ledger_tx_id,omitempty"`
}

func matchedPaperFrom(p *models.ResearchPaper) *MatchedPaper {
	if p == nil {
		return nil
	}
	return &MatchedPaper{
		PaperID:        p.PaperID,
		Title:          p.Title,
		Author:         p.Author,
		Department:     p.Department,
		Institution:    p.Institution,
		SubmissionDate: p.SubmissionDate,
		LedgerTxID:     p.LedgerTxID,
	}
}

// VerificationReport is the result handed back to the caller. Reviewer
// reports name the matched documents; submitter reports carry aggregates only.
type VerificationReport struct {
	Verified             bool               `json:"verified"`
	MatchType            string             `json:"match_type"`
	SimilarityPct        float64            `json:"similarity_pct"`
	PlagiarismPct        float64            `json:"plagiarism_pct"`
	TitleEmbeddingSimPct float64            `json:"title_embedding_similarity_pct"`
	TitleStringSimPct    float64            `json:"title_string_similarity_pct"`
	ContentSimPct        float64            `json:"content_similarity_pct"`
	ExactTitleMatch      bool               `json:"exact_title_match"`
	ExactFileMatch       bool               `json:"exact_file_match"`
	BestMatch            *MatchedPaper      `json:"best_match,omitempty"`
	TopMatches           []RankedMatch      `json:"top_matches,omitempty"`
	RankedMatchCount     int                `json:"ranked_match_count"`
	MatchedPapersCount   int                `json:"matched_papers_count"`
	AIDetection          *AIDetectionResult `json:"ai_detection,omitempty"`
	Message              string             `json:"message"`
	Disclaimer           string             `json:"disclaimer"`
	Degraded             []string           `json:"degraded,omitempty"`
	ViewerRole           string             `json:"viewer_role"`
	FileHash             string             `json:"file_hash"`
	FileName             string             `json:"file_name"`
	FileSize             int64              `json:"file_size"`
	GeneratedAt          time.Time          `json:"generated_at"`
}

// IsBlocking reports whether the report must stop a reviewer upload from
// entering the approval workflow.
func (r *VerificationReport) IsBlocking(threshold float64) bool {
	if r == nil {
		return false
	}
	return r.MatchType == MatchTypeIdenticalContent ||
		r.MatchType == MatchTypeExactTitle ||
		r.PlagiarismPct >= threshold
}

// VerificationOutcome carries the report plus the artefacts the approval
// workflow stores alongside a submission.
type VerificationOutcome struct {
	Report           *VerificationReport
	MimeType         string
	Text             string
	TitleEmbedding   []float64
	ContentEmbedding []float64
	EmbeddingModel   string
}

// VerificationDeps wires the collaborators of VerificationService. Cache and
// Embedder may be nil.
type VerificationDeps struct {
	Corpus    CorpusStore
	Embedder  Embedder
	Extractor TextExtractor
	Cache     ReportCache
	Logger    *zap.SugaredLogger
}

// VerificationService drives one verification request end to end.
type VerificationService struct {
	corpus    CorpusStore
	embedder  Embedder
	extractor TextExtractor
	cache     ReportCache
	log       *zap.SugaredLogger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewVerificationService(deps VerificationDeps) *VerificationService {
	if deps.Corpus == nil {
		deps.Corpus = NewGormCorpusStore(nil)
	}
	if deps.Extractor == nil {
		deps.Extractor = DocumentExtractor{}
	}
	if deps.Logger == nil {
		deps.Logger = config.Logger()
	}
	return &VerificationService{
		corpus:    deps.Corpus,
		embedder:  deps.Embedder,
		extractor: deps.Extractor,
		cache:     deps.Cache,
		log:       deps.Logger,
		tracer:    otel.Tracer("thesis-verification-api/services"),
		now:       time.Now,
	}
}

// Verify runs the pipeline and returns the report for viewerRole. Repeated
// uploads of the same file are served from the report cache when one is
// configured.
func (s *VerificationService) Verify(ctx context.Context, req VerificationRequest, viewerRole string) (*VerificationReport, error) {
	out, err := s.run(ctx, req, viewerRole, true)
	if err != nil {
		return nil, err
	}
	return out.Report, nil
}

// Analyze runs the full pipeline without the report cache and keeps the
// extracted text and embeddings.
func (s *VerificationService) Analyze(ctx context.Context, req VerificationRequest, viewerRole string) (*VerificationOutcome, error) {
	return s.run(ctx, req, viewerRole, false)
}

func (s *VerificationService) enter(ctx context.Context, state string, fields ...any) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "verification."+strings.ToLower(state),
		trace.WithAttributes(attribute.String("verification.state", state)))
	s.log.Infow("verification state", append([]any{"state", state}, fields...)...)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *VerificationService) run(ctx context.Context, req VerificationRequest, viewerRole string, useCache bool) (*VerificationOutcome, error) {
	viewerRole = normalizeViewerRole(viewerRole)

	// VALIDATING
	_, span := s.enter(ctx, StateValidating, "file", req.FileName, "size", len(req.Content))
	mime, err := validateRequest(req)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	// HASHING
	hctx, span := s.enter(ctx, StateHashing)
	fileHash := utils.HashBytes(req.Content)
	span.SetAttributes(attribute.String("file.hash", fileHash))
	corpus, err := s.corpus.Snapshot(hctx)
	if err != nil {
		endSpan(span, err)
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	exactFile, err := s.corpus.FindByFileHash(hctx, fileHash)
	if err != nil {
		s.log.Warnw("exact file hash lookup failed", "error", err)
	}
	endSpan(span, nil)
	if exactFile != nil {
		s.log.Infow("exact file hash match", "paper_id", exactFile.PaperID, "file_hash", fileHash)
	}

	cacheKey := reportCacheKey(fileHash, req.Title, viewerRole, len(corpus))
	if useCache && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			s.log.Infow("verification served from cache", "file_hash", fileHash)
			return &VerificationOutcome{Report: cached, MimeType: mime}, nil
		}
	}

	base := &VerificationReport{
		ViewerRole:     viewerRole,
		ExactFileMatch: exactFile != nil,
		FileHash:       fileHash,
		FileName:       req.FileName,
		FileSize:       int64(len(req.Content)),
		Disclaimer:     ReportDisclaimer,
	}

	// IDENTICAL_CHECK
	_, span = s.enter(ctx, StateIdenticalCheck, "corpus_size", len(corpus))
	text, err := s.extractor.Extract(req.FileName, req.Content)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			err = newValidationError("file", "could not extract text: %v", err)
		}
		endSpan(span, err)
		return nil, err
	}
	identical, identicalSim := FindNearlyIdentical(text, corpus)
	endSpan(span, nil)

	outcome := &VerificationOutcome{MimeType: mime, Text: text}
	if identical != nil {
		s.log.Warnw("identical content detected", "paper_id", identical.PaperID, "prefix_similarity", identicalSim)
		outcome.Report = s.identicalReport(base, identical)
		s.finish(ctx, outcome, cacheKey, useCache)
		return outcome, nil
	}

	// EMBEDDING_COMPARE
	ectx, span := s.enter(ctx, StateEmbeddingCompare, "corpus_size", len(corpus))
	titleVec, contentVec, embErr := EmbedSubmission(ectx, s.embedder, req.Title, text)
	if embErr != nil {
		degraded := &DependencyDegraded{Dependency: "embedding", Err: embErr}
		s.log.Warnw("embedding comparison skipped", "error", degraded)
		span.RecordError(degraded)
		base.Degraded = append(base.Degraded, DegradedEmbedding)
		titleVec, contentVec = nil, nil
	} else {
		outcome.TitleEmbedding, outcome.ContentEmbedding = titleVec, contentVec
		outcome.EmbeddingModel = s.embedder.Model()
	}

	if len(corpus) == 0 {
		endSpan(span, nil)
		_, sspan := s.enter(ctx, StateScoring, "path", MatchTypeFirstSubmission)
		ai := AnalyzeAIContent(text, req.Title, req.AbstractText)
		endSpan(sspan, nil)
		outcome.Report = firstSubmissionReport(base, &ai)
		s.finish(ctx, outcome, cacheKey, useCache)
		return outcome, nil
	}

	sim := FindBestMatch(req.Title, titleVec, contentVec, corpus)
	span.SetAttributes(attribute.Float64("similarity.combined", sim.CombinedSimilarityPct))
	endSpan(span, nil)

	// SCORING
	_, span = s.enter(ctx, StateScoring, "similarity", sim.CombinedSimilarityPct)
	ai := AnalyzeAIContent(text, req.Title, req.AbstractText)
	outcome.Report = scoredReport(base, sim, len(corpus), &ai)
	span.SetAttributes(
		attribute.String("report.match_type", outcome.Report.MatchType),
		attribute.Float64("report.plagiarism", outcome.Report.PlagiarismPct),
	)
	endSpan(span, nil)

	s.finish(ctx, outcome, cacheKey, useCache)
	return outcome, nil
}

func (s *VerificationService) finish(ctx context.Context, outcome *VerificationOutcome, cacheKey string, useCache bool) {
	r := outcome.Report
	r.GeneratedAt = s.now()
	_, span := s.enter(ctx, StateReported,
		"match_type", r.MatchType,
		"similarity", r.SimilarityPct,
		"plagiarism", r.PlagiarismPct,
		"verified", r.Verified,
	)
	endSpan(span, nil)
	if useCache && s.cache != nil {
		s.cache.Set(ctx, cacheKey, r)
	}
}

func validateRequest(req VerificationRequest) (string, error) {
	mime, err := ValidateDocument(req.FileName, req.Content)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", newValidationError("title", "title is required")
	}
	if strings.TrimSpace(req.Author) == "" {
		return "", newValidationError("author", "author is required")
	}
	return mime, nil
}

func normalizeViewerRole(role string) string {
	if models.IsReviewer(role) {
		return models.RoleReviewer
	}
	return models.RoleSubmitter
}

func (s *VerificationService) identicalReport(base *VerificationReport, paper *models.ResearchPaper) *VerificationReport {
	r := *base
	r.Verified = true
	r.MatchType = MatchTypeIdenticalContent
	r.SimilarityPct = 100
	r.PlagiarismPct = 100
	r.TitleEmbeddingSimPct = 100
	r.TitleStringSimPct = 100
	r.ContentSimPct = 100
	r.MatchedPapersCount = 1
	r.RankedMatchCount = 1
	if r.ViewerRole == models.RoleReviewer {
		r.BestMatch = matchedPaperFrom(paper)
		r.Message = fmt.Sprintf("CRITICAL: Identical content detected. This document matches '%s' by %s from %s.",
			paper.Title, paper.Author, paper.Institution)
	} else {
		r.Message = "CRITICAL: Identical content detected. This document appears to be the same as an existing paper in the registry."
	}
	r.Message = withDisclaimer(r.Message)
	return &r
}

func firstSubmissionReport(base *VerificationReport, ai *AIDetectionResult) *VerificationReport {
	r := *base
	r.MatchType = MatchTypeFirstSubmission
	r.AIDetection = ai
	r.Message = withDisclaimer(fmt.Sprintf(
		"VERIFICATION COMPLETE: The registry contains no prior submissions for comparison. "+
			"Similarity Score: 0.0%% | Plagiarism Risk: 0%% | %s | Status: First submission, no conflicts detected.",
		aiSummary(ai)))
	return &r
}

func scoredReport(base *VerificationReport, sim SimilarityResult, compared int, ai *AIDetectionResult) *VerificationReport {
	r := *base
	r.AIDetection = ai
	r.MatchedPapersCount = compared
	r.RankedMatchCount = len(sim.RankedMatches)
	r.TitleEmbeddingSimPct = sim.TitleEmbeddingSimPct
	r.TitleStringSimPct = sim.TitleStringSimPct
	r.ContentSimPct = sim.ContentEmbeddingSimPct
	r.ExactTitleMatch = sim.ExactTitleMatch
	reviewer := r.ViewerRole == models.RoleReviewer
	if reviewer {
		r.TopMatches = topMatches(sim.RankedMatches)
	}

	switch {
	case sim.ExactTitleMatch || sim.TitleStringSimPct >= exactTitleStringThresh:
		r.Verified = true
		r.MatchType = MatchTypeExactTitle
		r.SimilarityPct = sim.CombinedSimilarityPct
		r.PlagiarismPct = ApplyExactTitleFloor(
			PlagiarismScore(sim.CombinedSimilarityPct, sim.TitleStringSimPct),
			sim.ContentEmbeddingSimPct,
		)
		if reviewer && sim.BestMatch != nil {
			r.BestMatch = matchedPaperFrom(sim.BestMatch)
			r.Message = fmt.Sprintf("CRITICAL: Research with an identical title already exists. "+
				"Title: '%s' by %s from %s. Plagiarism score: %.1f%% | %s",
				sim.BestMatch.Title, sim.BestMatch.Author, sim.BestMatch.Institution, r.PlagiarismPct, aiSummary(ai))
		} else {
			r.Message = fmt.Sprintf("CRITICAL: Research with an identical title already exists. "+
				"Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | Status: Duplicate title detected",
				r.SimilarityPct, r.PlagiarismPct, aiSummary(ai))
		}

	case sim.BestMatch == nil || sim.CombinedSimilarityPct < originalWorkThreshold:
		r.MatchType = MatchTypeOriginalWork
		if sim.BestMatch != nil {
			r.SimilarityPct = sim.CombinedSimilarityPct
		}
		r.PlagiarismPct = 0
		status := "Original work detected. No title conflicts found."
		lead := "No similar research found in the registry."
		if r.SimilarityPct > 5 {
			lead = "Very low similarity detected."
			status = "Appears to be original work with minimal overlap."
		}
		r.Message = fmt.Sprintf("VERIFICATION COMPLETE: %s Similarity Score: %.1f%% | Plagiarism Risk: 0%% | %s | Status: %s",
			lead, r.SimilarityPct, aiSummary(ai), status)

	default:
		r.SimilarityPct = sim.CombinedSimilarityPct
		plagiarism := PlagiarismScore(sim.CombinedSimilarityPct, sim.TitleStringSimPct)
		r.PlagiarismPct, r.MatchType = ApplyReportFloors(sim.CombinedSimilarityPct, plagiarism, MatchTypeForSimilarity(sim.CombinedSimilarityPct))
		r.Verified = sim.CombinedSimilarityPct >= verifiedThreshold
		if reviewer {
			r.BestMatch = matchedPaperFrom(sim.BestMatch)
		}
		r.Message = scoredMessage(&r, sim.BestMatch, ai)
	}

	r.Message = withDisclaimer(r.Message)
	return &r
}

func scoredMessage(r *VerificationReport, paper *models.ResearchPaper, ai *AIDetectionResult) string {
	reviewer := r.ViewerRole == models.RoleReviewer && paper != nil
	aiInfo := aiSummary(ai)

	switch {
	case r.PlagiarismPct >= 95:
		if reviewer {
			return fmt.Sprintf("SEVERE PLAGIARISM DETECTED: %.1f%% similarity with '%s' by %s from %s (%s). "+
				"This appears to be copied or nearly identical content. | %s",
				r.SimilarityPct, paper.Title, paper.Author, paper.Institution, paper.Department, aiInfo)
		}
		return fmt.Sprintf("SEVERE PLAGIARISM DETECTED: Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | "+
			"Status: Nearly identical content found.", r.SimilarityPct, r.PlagiarismPct, aiInfo)
	case r.PlagiarismPct >= 85:
		if reviewer {
			return fmt.Sprintf("HIGH PLAGIARISM RISK: %.1f%% similarity detected with '%s' by %s from %s. "+
				"Significant overlap found. Department: %s | Plagiarism Score: %.1f%% | %s",
				r.SimilarityPct, paper.Title, paper.Author, paper.Institution, paper.Department, r.PlagiarismPct, aiInfo)
		}
		return fmt.Sprintf("HIGH PLAGIARISM RISK: Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | "+
			"Status: Significant overlap detected with existing research", r.SimilarityPct, r.PlagiarismPct, aiInfo)
	case r.PlagiarismPct >= 70:
		if reviewer {
			return fmt.Sprintf("MODERATE PLAGIARISM RISK: %.1f%% similarity with '%s' by %s (%s). "+
				"Please review for potential plagiarism. Institution: %s | Score: %.1f%% | %s",
				r.SimilarityPct, paper.Title, paper.Author, paper.Department, paper.Institution, r.PlagiarismPct, aiInfo)
		}
		return fmt.Sprintf("MODERATE PLAGIARISM RISK: Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | "+
			"Status: Moderate overlap detected, please review content carefully", r.SimilarityPct, r.PlagiarismPct, aiInfo)
	case r.Verified:
		if reviewer {
			return fmt.Sprintf("SIMILARITY DETECTED: %.1f%% similarity with existing research '%s' by %s from %s. "+
				"Department: %s | Plagiarism Score: %.1f%% | %s | Recommended: review citations and references",
				r.SimilarityPct, paper.Title, paper.Author, paper.Institution, paper.Department, r.PlagiarismPct, aiInfo)
		}
		return fmt.Sprintf("SIMILARITY DETECTED: Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | "+
			"Status: Some similarity found with existing research", r.SimilarityPct, r.PlagiarismPct, aiInfo)
	default:
		return fmt.Sprintf("LOW SIMILARITY: Similarity Score: %.1f%% | Plagiarism Risk: %.1f%% | %s | "+
			"Status: Minimal overlap detected, appears to be largely original work", r.SimilarityPct, r.PlagiarismPct, aiInfo)
	}
}

func aiSummary(ai *AIDetectionResult) string {
	if ai == nil {
		return "AI Detection: skipped"
	}
	return fmt.Sprintf("AI Detection: %.1f%% probability", ai.ProbabilityPct)
}

func withDisclaimer(msg string) string {
	return msg + " (" + ReportDisclaimer + ")"
}

func topMatches(ranked []RankedMatch) []RankedMatch {
	if len(ranked) > topMatchLimit {
		ranked = ranked[:topMatchLimit]
	}
	out := make([]RankedMatch, len(ranked))
	copy(out, ranked)
	return out
}

// SearchQuery selects corpus records. Hash wins over ledger tx id, which wins
// over title/author substring search.
type SearchQuery struct {
	Hash   string
	TxID   string
	Title  string
	Author string
}

// SearchPapers looks up corpus records. An empty result means no match.
func (s *VerificationService) SearchPapers(ctx context.Context, q SearchQuery) ([]models.ResearchPaper, error) {
	q.Hash, q.TxID = strings.TrimSpace(q.Hash), strings.TrimSpace(q.TxID)
	q.Title, q.Author = strings.TrimSpace(q.Title), strings.TrimSpace(q.Author)
	if q.Hash == "" && q.TxID == "" && q.Title == "" && q.Author == "" {
		return nil, newValidationError("query", "at least one of hash, tx_id, title or author is required")
	}

	if q.Hash != "" {
		p, err := s.corpus.FindByFileHash(ctx, q.Hash)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return []models.ResearchPaper{*p}, nil
		}
	}
	if q.TxID != "" {
		p, err := s.corpus.FindByLedgerTx(ctx, q.TxID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return []models.ResearchPaper{*p}, nil
		}
	}
	if q.Title == "" && q.Author == "" {
		return []models.ResearchPaper{}, nil
	}
	return s.corpus.Search(ctx, q.Title, q.Author)
}
