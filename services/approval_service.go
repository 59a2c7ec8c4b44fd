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
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitRequest is a reviewer upload entering the approval workflow.
// Outcome, when set, is the analysis already run for the blocking check and
// is reused instead of verifying the document a second time.
type SubmitRequest struct {
	Document           VerificationRequest
	ValidationFileName string
	ValidationContent  []byte
	UploadedBy         int
	Outcome            *VerificationOutcome
}

// ReviewerStatistics is the dashboard summary for one reviewer.
type ReviewerStatistics struct {
	TotalPending       int `json:"total_pending"`
	UploadedByMe       int `json:"uploaded_by_me"`
	ApprovedByMe       int `json:"approved_by_me"`
	AwaitingMyApproval int `json:"awaiting_my_approval"`
}

// LedgerRetryResult summarises one RetryPendingLedger pass.
type LedgerRetryResult struct {
	Attempted int `json:"attempted"`
	Committed int `json:"committed"`
	Failed    int `json:"failed"`
}

// ApprovalDeps wires the collaborators of ApprovalService.
type ApprovalDeps struct {
	DB            *gorm.DB
	Verifier      *VerificationService
	Corpus        CorpusStore
	Reviewers     ReviewerDirectory
	Files         FileStore
	Ledger        Ledger
	Notifier      Notifier
	LedgerTimeout time.Duration
	Logger        *zap.SugaredLogger
}

// ApprovalService runs the quorum approval workflow for reviewer uploads.
type ApprovalService struct {
	db            *gorm.DB
	verifier      *VerificationService
	corpus        CorpusStore
	reviewers     ReviewerDirectory
	files         FileStore
	ledger        Ledger
	notifier      Notifier
	ledgerTimeout time.Duration
	log           *zap.SugaredLogger
	locks         *keyedMutex
	now           func() time.Time
}

func NewApprovalService(deps ApprovalDeps) *ApprovalService {
	if deps.DB == nil {
		deps.DB = config.DB
	}
	if deps.Corpus == nil {
		deps.Corpus = NewGormCorpusStore(deps.DB)
	}
	if deps.Reviewers == nil {
		deps.Reviewers = NewGormReviewerDirectory(deps.DB)
	}
	if deps.Ledger == nil {
		deps.Ledger = SimulatedLedger{}
	}
	if deps.LedgerTimeout <= 0 {
		deps.LedgerTimeout = 15 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = config.Logger()
	}
	if deps.Notifier == nil {
		deps.Notifier = NewMailNotifier(deps.Logger)
	}
	return &ApprovalService{
		db:            deps.DB,
		verifier:      deps.Verifier,
		corpus:        deps.Corpus,
		reviewers:     deps.Reviewers,
		files:         deps.Files,
		ledger:        deps.Ledger,
		notifier:      deps.Notifier,
		ledgerTimeout: deps.LedgerTimeout,
		log:           deps.Logger,
		locks:         newKeyedMutex(),
		now:           time.Now,
	}
}

// Submit persists a reviewer upload as PENDING_APPROVAL and notifies the
// other reviewers.
func (s *ApprovalService) Submit(ctx context.Context, req SubmitRequest) (*models.PendingSubmission, error) {
	doc := req.Document
	if len(doc.Content) == 0 {
		return nil, newValidationError("file", "thesis document is required")
	}
	if len(req.ValidationContent) == 0 {
		return nil, newValidationError("validation_document", "validation document is required")
	}
	if len(req.ValidationContent) > MaxDocumentSize {
		return nil, newValidationError("validation_document", "file exceeds the %d MB limit", MaxDocumentSize/(1024*1024))
	}
	if s.files == nil {
		return nil, errors.New("approval service has no file store")
	}

	outcome := req.Outcome
	if outcome == nil {
		if s.verifier == nil {
			return nil, errors.New("approval service has no verifier")
		}
		var err error
		outcome, err = s.verifier.Analyze(ctx, doc, models.RoleReviewer)
		if err != nil {
			return nil, err
		}
	}
	fileHash := utils.HashBytes(doc.Content)

	if err := s.ensureNotDuplicate(ctx, fileHash); err != nil {
		return nil, err
	}

	reviewers, err := s.reviewers.CountActiveReviewers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviewers: %w", err)
	}
	required := reviewers - 1
	if required <= 0 {
		return nil, newConflict(GuardInsufficientReviewerPool,
			"at least two active reviewers are required, found %d", reviewers)
	}

	thesisPath, err := s.files.Save(models.UploadPurposeThesis, doc.FileName, doc.Content)
	if err != nil {
		return nil, err
	}
	validationPath, err := s.files.Save(models.UploadPurposeValidation, req.ValidationFileName, req.ValidationContent)
	if err != nil {
		_ = s.files.Remove(thesisPath)
		return nil, err
	}

	now := s.now()
	sub := &models.PendingSubmission{
		SubmissionID:           uuid.NewString(),
		Title:                  utils.SanitizeInput(doc.Title),
		Author:                 utils.SanitizeInput(doc.Author),
		Department:             utils.SanitizeInput(doc.Department),
		Institution:            utils.SanitizeInput(doc.Institution),
		Supervisor:             utils.SanitizeInput(doc.Supervisor),
		SubmissionYear:         doc.SubmissionYear,
		Keywords:               models.EncodeStrings(doc.Keywords),
		FileHash:               fileHash,
		FileName:               doc.FileName,
		FileSize:               int64(len(doc.Content)),
		ContentPath:            thesisPath,
		ValidationDocPath:      validationPath,
		ValidationDocName:      req.ValidationFileName,
		ValidationDocHash:      utils.HashBytes(req.ValidationContent),
		ValidationDocSize:      int64(len(req.ValidationContent)),
		ExtractedText:          outcome.Text,
		TitleEmbedding:         models.EncodeVector(outcome.TitleEmbedding),
		ContentEmbedding:       models.EncodeVector(outcome.ContentEmbedding),
		EmbeddingModel:         outcome.EmbeddingModel,
		UploadedBy:             req.UploadedBy,
		Approvals:              []byte("[]"),
		TotalApprovalsRequired: required,
		Status:                 models.SubmissionStatusPending,
		CreateAt:               now,
		UpdateAt:               now,
	}
	if abstract := strings.TrimSpace(doc.AbstractText); abstract != "" {
		sub.AbstractText = &abstract
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		uploads := []models.FileUpload{
			{
				FileID: uuid.NewString(), SubmissionID: sub.SubmissionID, Purpose: models.UploadPurposeThesis,
				OriginalName: doc.FileName, StoredPath: thesisPath, FileSize: sub.FileSize,
				MimeType: outcome.MimeType, FileHash: fileHash, UploadedBy: req.UploadedBy, UploadedAt: now,
			},
			{
				FileID: uuid.NewString(), SubmissionID: sub.SubmissionID, Purpose: models.UploadPurposeValidation,
				OriginalName: req.ValidationFileName, StoredPath: validationPath, FileSize: sub.ValidationDocSize,
				MimeType: mimetype.Detect(req.ValidationContent).String(), FileHash: sub.ValidationDocHash,
				UploadedBy: req.UploadedBy, UploadedAt: now,
			},
		}
		if err := tx.Create(&uploads).Error; err != nil {
			return fmt.Errorf("failed to record uploads: %w", err)
		}
		note := fmt.Sprintf("requires %d approvals", required)
		return tx.Create(&models.SubmissionStatusHistory{
			SubmissionID: sub.SubmissionID,
			NewStatus:    models.SubmissionStatusPending,
			ChangedBy:    req.UploadedBy,
			Notes:        &note,
			CreatedAt:    now,
		}).Error
	})
	if err != nil {
		_ = s.files.Remove(thesisPath)
		_ = s.files.Remove(validationPath)
		return nil, err
	}

	s.log.Infow("submission created",
		"submission_id", sub.SubmissionID,
		"reviewer", req.UploadedBy,
		"required_approvals", required,
		"file_hash", fileHash,
	)

	if emails, err := s.reviewers.ReviewerEmails(ctx, req.UploadedBy); err != nil {
		s.log.Warnw("could not load reviewer e-mails", "submission_id", sub.SubmissionID, "error", err)
	} else {
		s.notifier.SubmissionCreated(ctx, sub, emails)
	}
	return sub, nil
}

func (s *ApprovalService) ensureNotDuplicate(ctx context.Context, fileHash string) error {
	var pending int64
	err := s.db.WithContext(ctx).Model(&models.PendingSubmission{}).
		Where("file_hash = ? AND status IN ?", fileHash,
			[]string{models.SubmissionStatusPending, models.SubmissionStatusApproved}).
		Count(&pending).Error
	if err != nil {
		return err
	}
	if pending > 0 {
		return newConflict(GuardDuplicateFile, "this file is already in the approval workflow")
	}
	existing, err := s.corpus.FindByFileHash(ctx, fileHash)
	if err != nil {
		return err
	}
	if existing != nil {
		return newConflict(GuardDuplicateFile, "this file is already registered as paper %s", existing.PaperID)
	}
	return nil
}

// loadForUpdate reads a submission under a row lock inside tx.
func loadForUpdate(tx *gorm.DB, id string) (*models.PendingSubmission, error) {
	var sub models.PendingSubmission
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ?", id).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "submission", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Approve records reviewerID's approval. The approval that completes the
// quorum moves the record to APPROVED and hands it to the ledger; no other
// call can do either.
func (s *ApprovalService) Approve(ctx context.Context, id string, reviewerID int) (*models.PendingSubmission, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var (
		sub          *models.PendingSubmission
		reachedQuota bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if sub.UploadedBy == reviewerID {
			return newConflict(GuardSelfApproval, "the uploader cannot approve their own submission")
		}
		if sub.IsTerminal() {
			return newConflict(GuardTerminalState, "submission is already %s", sub.Status)
		}
		if !sub.AddApproval(reviewerID) {
			return newConflict(GuardDoubleApproval, "reviewer %d has already approved", reviewerID)
		}

		now := s.now()
		oldStatus := sub.Status
		updates := map[string]any{
			"approvals": sub.Approvals,
			"update_at": now,
		}
		if sub.QuorumReached() {
			reachedQuota = true
			sub.Status = models.SubmissionStatusApproved
			sub.ApprovedAt = &now
			updates["status"] = sub.Status
			updates["approved_at"] = now
		}
		sub.UpdateAt = now

		res := tx.Model(&models.PendingSubmission{}).
			Where("submission_id = ? AND status = ?", id, models.SubmissionStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update submission: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return newConflict(GuardTerminalState, "submission changed concurrently")
		}

		if err := tx.Create(&models.SubmissionReview{
			SubmissionID: id,
			ReviewerID:   reviewerID,
			ReviewRound:  sub.CurrentApprovals(),
			Decision:     models.ReviewDecisionApproved,
			ReviewedAt:   now,
		}).Error; err != nil {
			return fmt.Errorf("failed to record review: %w", err)
		}

		note := fmt.Sprintf("approval %d of %d", sub.CurrentApprovals(), sub.TotalApprovalsRequired)
		return tx.Create(&models.SubmissionStatusHistory{
			SubmissionID: id,
			OldStatus:    &oldStatus,
			NewStatus:    sub.Status,
			ChangedBy:    reviewerID,
			Notes:        &note,
			CreatedAt:    now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("submission approval recorded",
		"submission_id", id,
		"reviewer", reviewerID,
		"approvals", sub.CurrentApprovals(),
		"required", sub.TotalApprovalsRequired,
	)

	if reachedQuota {
		s.handOff(ctx, sub)
		if email, err := s.reviewers.Email(ctx, sub.UploadedBy); err == nil && email != "" {
			s.notifier.SubmissionApproved(ctx, sub, email)
		}
	}
	return sub, nil
}

// Reject moves a pending submission straight to REJECTED.
func (s *ApprovalService) Reject(ctx context.Context, id string, reviewerID int, reason string) (*models.PendingSubmission, error) {
	reason = strings.TrimSpace(reason)

	unlock := s.locks.Lock(id)
	defer unlock()

	var sub *models.PendingSubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if sub.UploadedBy == reviewerID {
			return newConflict(GuardSelfRejection, "the uploader cannot reject their own submission")
		}
		if sub.IsTerminal() {
			return newConflict(GuardTerminalState, "submission is already %s", sub.Status)
		}
		if reason == "" {
			return newValidationError("reason", "a rejection reason is required")
		}

		now := s.now()
		oldStatus := sub.Status
		sub.Status = models.SubmissionStatusRejected
		sub.RejectionReason = &reason
		sub.RejectedBy = &reviewerID
		sub.RejectedAt = &now
		sub.UpdateAt = now

		res := tx.Model(&models.PendingSubmission{}).
			Where("submission_id = ? AND status = ?", id, models.SubmissionStatusPending).
			Updates(map[string]any{
				"status":           sub.Status,
				"rejection_reason": reason,
				"rejected_by":      reviewerID,
				"rejected_at":      now,
				"update_at":        now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update submission: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return newConflict(GuardTerminalState, "submission changed concurrently")
		}

		if err := tx.Create(&models.SubmissionReview{
			SubmissionID: id,
			ReviewerID:   reviewerID,
			ReviewRound:  sub.CurrentApprovals() + 1,
			Decision:     models.ReviewDecisionRejected,
			Comments:     &reason,
			ReviewedAt:   now,
		}).Error; err != nil {
			return fmt.Errorf("failed to record review: %w", err)
		}

		return tx.Create(&models.SubmissionStatusHistory{
			SubmissionID: id,
			OldStatus:    &oldStatus,
			NewStatus:    sub.Status,
			ChangedBy:    reviewerID,
			Reason:       &reason,
			CreatedAt:    now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("submission rejected", "submission_id", id, "reviewer", reviewerID)
	if email, err := s.reviewers.Email(ctx, sub.UploadedBy); err == nil && email != "" {
		s.notifier.SubmissionRejected(ctx, sub, email)
	}
	return sub, nil
}

func ledgerRecordFor(sub *models.PendingSubmission) LedgerRecord {
	return LedgerRecord{
		StudentID:    sub.Author,
		PaperHash:    sub.FileHash,
		Author:       sub.Author,
		UploadedBy:   sub.UploadedBy,
		PaperDate:    sub.CreateAt.Format("2006-01-02"),
		Title:        sub.Title,
		SubmissionID: sub.SubmissionID,
	}
}

// handOff commits an approved submission to the ledger and appends it to the
// corpus. The ledger outcome is written to the submission before the corpus
// append, so a failure in either step leaves an APPROVED record that
// RetryPendingLedger can find.
func (s *ApprovalService) handOff(ctx context.Context, sub *models.PendingSubmission) {
	pctx, lctx, cancel := handOffContext(ctx, s.ledgerTimeout)
	defer cancel()

	txID, paperStatus := s.commitToLedger(lctx, sub)
	if _, err := s.registerApproved(pctx, sub, txID, paperStatus); err != nil {
		s.log.Errorw("approved submission not registered, left for retry",
			"submission_id", sub.SubmissionID, "tx_id", txID, "error", err)
	}
}

// commitToLedger returns the ledger tx id and the corpus status that goes
// with it. A failed commit yields the PENDING sentinel.
func (s *ApprovalService) commitToLedger(ctx context.Context, sub *models.PendingSubmission) (string, string) {
	txID, err := s.ledger.Commit(ctx, ledgerRecordFor(sub))
	if err != nil {
		s.log.Warnw("ledger commit failed, record left pending",
			"submission_id", sub.SubmissionID,
			"ledger", s.ledger.Name(),
			"error", &DependencyDegraded{Dependency: "ledger", Err: err},
		)
		return models.LedgerTxPending, models.PaperStatusBlockchainPending
	}
	return txID, models.PaperStatusVerified
}

// registerApproved stores txID on the submission, then appends the corpus
// record.
func (s *ApprovalService) registerApproved(ctx context.Context, sub *models.PendingSubmission, txID, paperStatus string) (*models.ResearchPaper, error) {
	sub.LedgerTxID = &txID
	if err := s.db.WithContext(ctx).Model(&models.PendingSubmission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Update("ledger_tx_id", txID).Error; err != nil {
		return nil, fmt.Errorf("failed to store ledger tx id: %w", err)
	}

	paper := corpusRecordFor(sub, paperStatus, txID)
	if err := s.corpus.Append(ctx, nil, paper); err != nil {
		return nil, err
	}
	s.log.Infow("approved submission registered",
		"submission_id", sub.SubmissionID,
		"paper_id", paper.PaperID,
		"tx_id", txID,
		"status", paperStatus,
	)
	return paper, nil
}

func corpusRecordFor(sub *models.PendingSubmission, status, txID string) *models.ResearchPaper {
	submissionID := sub.SubmissionID
	verifiedAt := sub.ApprovedAt
	return &models.ResearchPaper{
		PaperID:           uuid.NewString(),
		SubmissionID:      &submissionID,
		Title:             sub.Title,
		Author:            sub.Author,
		Department:        sub.Department,
		Institution:       sub.Institution,
		Supervisor:        sub.Supervisor,
		SubmissionDate:    sub.CreateAt,
		FileHash:          sub.FileHash,
		FileName:          sub.FileName,
		FileSize:          sub.FileSize,
		FilePath:          sub.ContentPath,
		AbstractText:      sub.AbstractText,
		Keywords:          sub.Keywords,
		IndexedText:       sub.ExtractedText,
		IndexedTextLength: utf8.RuneCountInString(sub.ExtractedText),
		TitleEmbedding:    sub.TitleEmbedding,
		ContentEmbedding:  sub.ContentEmbedding,
		EmbeddingModel:    sub.EmbeddingModel,
		Status:            status,
		LedgerTxID:        txID,
		LedgerHash:        LedgerHash(sub.Title, sub.Author, sub.FileHash, sub.CreateAt),
		UploadedBy:        sub.UploadedBy,
		VerifiedBy:        sub.Approvals,
		VerifiedAt:        verifiedAt,
	}
}

// RetryPendingLedger re-drives every corpus record whose ledger commit
// failed, then registers APPROVED submissions that never reached the corpus.
// Each record is attempted once per call.
func (s *ApprovalService) RetryPendingLedger(ctx context.Context) (LedgerRetryResult, error) {
	var result LedgerRetryResult
	papers, err := s.corpus.ListLedgerPending(ctx)
	if err != nil {
		return result, err
	}
	for i := range papers {
		p := &papers[i]
		result.Attempted++

		rec := LedgerRecord{
			StudentID:  p.Author,
			PaperHash:  p.FileHash,
			Author:     p.Author,
			UploadedBy: p.UploadedBy,
			PaperDate:  p.SubmissionDate.Format("2006-01-02"),
			Title:      p.Title,
		}
		if p.SubmissionID != nil {
			rec.SubmissionID = *p.SubmissionID
		}

		lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
		txID, err := s.ledger.Commit(lctx, rec)
		cancel()
		if err != nil {
			result.Failed++
			s.log.Warnw("ledger retry failed", "paper_id", p.PaperID, "error", err)
			continue
		}

		if err := s.corpus.MarkLedgerCommitted(ctx, p.PaperID, txID); err != nil {
			result.Failed++
			s.log.Errorw("ledger committed but record not updated", "paper_id", p.PaperID, "tx_id", txID, "error", err)
			continue
		}
		if rec.SubmissionID != "" {
			if err := s.db.WithContext(ctx).Model(&models.PendingSubmission{}).
				Where("submission_id = ?", rec.SubmissionID).
				Update("ledger_tx_id", txID).Error; err != nil {
				s.log.Warnw("could not update submission tx id", "submission_id", rec.SubmissionID, "error", err)
			}
		}
		result.Committed++
		s.log.Infow("ledger retry committed", "paper_id", p.PaperID, "tx_id", txID)
	}

	unregistered, err := s.approvedWithoutCorpusRecord(ctx)
	if err != nil {
		return result, err
	}
	for i := range unregistered {
		sub := &unregistered[i]
		result.Attempted++

		// a tx id already on the submission means the ledger accepted it
		txID, paperStatus := "", models.PaperStatusVerified
		if sub.LedgerTxID != nil && *sub.LedgerTxID != "" && *sub.LedgerTxID != models.LedgerTxPending {
			txID = *sub.LedgerTxID
		} else {
			lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
			txID, paperStatus = s.commitToLedger(lctx, sub)
			cancel()
		}

		if _, err := s.registerApproved(ctx, sub, txID, paperStatus); err != nil {
			result.Failed++
			s.log.Errorw("approved submission still not registered", "submission_id", sub.SubmissionID, "error", err)
			continue
		}
		if paperStatus != models.PaperStatusVerified {
			result.Failed++
			continue
		}
		result.Committed++
	}
	return result, nil
}

func (s *ApprovalService) approvedWithoutCorpusRecord(ctx context.Context) ([]models.PendingSubmission, error) {
	var subs []models.PendingSubmission
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SubmissionStatusApproved).
		Where("NOT EXISTS (SELECT 1 FROM research_papers rp WHERE rp.submission_id = pending_submissions.submission_id)").
		Order("approved_at ASC").
		Find(&subs).Error
	return subs, err
}

// Get returns one submission by id.
func (s *ApprovalService) Get(ctx context.Context, id string) (*models.PendingSubmission, error) {
	var sub models.PendingSubmission
	err := s.db.WithContext(ctx).Where("submission_id = ?", id).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "submission", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPending returns every submission still awaiting approval, oldest first.
func (s *ApprovalService) ListPending(ctx context.Context) ([]models.PendingSubmission, error) {
	var subs []models.PendingSubmission
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SubmissionStatusPending).
		Order("create_at ASC").
		Find(&subs).Error
	return subs, err
}

// ListAwaitingReviewer returns pending submissions reviewerID can still act on.
func (s *ApprovalService) ListAwaitingReviewer(ctx context.Context, reviewerID int) ([]models.PendingSubmission, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PendingSubmission, 0, len(pending))
	for _, sub := range pending {
		if sub.UploadedBy != reviewerID && !sub.HasApproved(reviewerID) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// ListUploadedBy returns every submission reviewerID uploaded, newest first.
func (s *ApprovalService) ListUploadedBy(ctx context.Context, reviewerID int) ([]models.PendingSubmission, error) {
	var subs []models.PendingSubmission
	err := s.db.WithContext(ctx).
		Where("uploaded_by = ?", reviewerID).
		Order("create_at DESC").
		Find(&subs).Error
	return subs, err
}

func (s *ApprovalService) Statistics(ctx context.Context, reviewerID int) (ReviewerStatistics, error) {
	var stats ReviewerStatistics
	pending, err := s.ListPending(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalPending = len(pending)
	for _, sub := range pending {
		switch {
		case sub.UploadedBy == reviewerID:
			stats.UploadedByMe++
		case sub.HasApproved(reviewerID):
			stats.ApprovedByMe++
		default:
			stats.AwaitingMyApproval++
		}
	}
	return stats, nil
}
