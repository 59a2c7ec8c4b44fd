package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"thesis-verification-api/config"
	"thesis-verification-api/models"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// CorpusStore is the append-only store of accepted theses.
type CorpusStore interface {
	// Snapshot returns every corpus record. Callers must treat the slice as
	// read-only.
	Snapshot(ctx context.Context) ([]models.ResearchPaper, error)
	FindByFileHash(ctx context.Context, hash string) (*models.ResearchPaper, error)
	FindByLedgerTx(ctx context.Context, txID string) (*models.ResearchPaper, error)
	Search(ctx context.Context, title, author string) ([]models.ResearchPaper, error)
	Append(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error
	ListLedgerPending(ctx context.Context) ([]models.ResearchPaper, error)
	MarkLedgerCommitted(ctx context.Context, paperID, txID string) error
	// Invalidate drops any cached snapshot. Call after committing a
	// transaction that appended records.
	Invalidate()
}

var corpusSnapshotTTL = 5 * time.Minute

type corpusSnapshot struct {
	papers    []models.ResearchPaper
	fetchedAt time.Time
}

// GormCorpusStore reads and appends research_papers rows. Snapshots are
// cached for corpusSnapshotTTL and dropped on every append.
type GormCorpusStore struct {
	db *gorm.DB

	mu       sync.RWMutex
	snapshot *corpusSnapshot
	// generation is bumped by Invalidate; a load only caches its rows when
	// no append landed while it was reading.
	generation uint64
	group      singleflight.Group
}

func NewGormCorpusStore(db *gorm.DB) *GormCorpusStore {
	if db == nil {
		db = config.DB
	}
	return &GormCorpusStore{db: db}
}

func (s *GormCorpusStore) Snapshot(ctx context.Context) ([]models.ResearchPaper, error) {
	s.mu.RLock()
	cached := s.snapshot
	s.mu.RUnlock()
	if cached != nil && time.Since(cached.fetchedAt) < corpusSnapshotTTL {
		return cached.papers, nil
	}

	v, err, _ := s.group.Do("snapshot", func() (any, error) {
		s.mu.RLock()
		again := s.snapshot
		startGen := s.generation
		s.mu.RUnlock()
		if again != nil && time.Since(again.fetchedAt) < corpusSnapshotTTL {
			return again.papers, nil
		}

		var rows []models.ResearchPaper
		if err := s.db.WithContext(ctx).Order("create_at ASC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load corpus: %w", err)
		}

		s.mu.Lock()
		if s.generation == startGen {
			s.snapshot = &corpusSnapshot{papers: rows, fetchedAt: time.Now()}
		}
		s.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ResearchPaper), nil
}

func (s *GormCorpusStore) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.generation++
	s.mu.Unlock()
	s.group.Forget("snapshot")
}

func (s *GormCorpusStore) FindByFileHash(ctx context.Context, hash string) (*models.ResearchPaper, error) {
	return s.first(ctx, "file_hash = ?", strings.TrimSpace(hash))
}

func (s *GormCorpusStore) FindByLedgerTx(ctx context.Context, txID string) (*models.ResearchPaper, error) {
	return s.first(ctx, "ledger_tx_id = ?", strings.TrimSpace(txID))
}

func (s *GormCorpusStore) first(ctx context.Context, query string, arg any) (*models.ResearchPaper, error) {
	var paper models.ResearchPaper
	err := s.db.WithContext(ctx).Where(query, arg).Order("create_at ASC").First(&paper).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// Search matches title and author case-insensitively by literal substring;
// % and _ in the input are not wildcards. Results are de-duplicated, title
// matches first.
func (s *GormCorpusStore) Search(ctx context.Context, title, author string) ([]models.ResearchPaper, error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	out := make([]models.ResearchPaper, 0)
	seen := make(map[string]struct{})

	add := func(column, value string) error {
		if value == "" {
			return nil
		}
		var rows []models.ResearchPaper
		if err := s.db.WithContext(ctx).
			Where("LOWER("+column+") LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(value))+"%").
			Order("create_at DESC").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			if _, ok := seen[r.PaperID]; ok {
				continue
			}
			seen[r.PaperID] = struct{}{}
			out = append(out, r)
		}
		return nil
	}

	if err := add("title", title); err != nil {
		return nil, err
	}
	if err := add("author", author); err != nil {
		return nil, err
	}
	return out, nil
}

// Append inserts a corpus record. With a non-nil tx the caller owns the
// commit and must call Invalidate afterwards.
func (s *GormCorpusStore) Append(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error {
	db := s.db
	if tx != nil {
		db = tx
	}
	now := time.Now()
	if paper.CreateAt.IsZero() {
		paper.CreateAt = now
	}
	paper.UpdateAt = now
	if err := db.WithContext(ctx).Create(paper).Error; err != nil {
		return fmt.Errorf("failed to append corpus record: %w", err)
	}
	if tx == nil {
		s.Invalidate()
	}
	return nil
}

func (s *GormCorpusStore) ListLedgerPending(ctx context.Context) ([]models.ResearchPaper, error) {
	var rows []models.ResearchPaper
	err := s.db.WithContext(ctx).
		Where("status = ? OR ledger_tx_id = ?", models.PaperStatusBlockchainPending, models.LedgerTxPending).
		Order("create_at ASC").
		Find(&rows).Error
	return rows, err
}

func (s *GormCorpusStore) MarkLedgerCommitted(ctx context.Context, paperID, txID string) error {
	res := s.db.WithContext(ctx).Model(&models.ResearchPaper{}).
		Where("paper_id = ?", paperID).
		Updates(map[string]any{
			"ledger_tx_id": txID,
			"status":       models.PaperStatusVerified,
			"update_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "research paper", ID: paperID}
	}
	s.Invalidate()
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
