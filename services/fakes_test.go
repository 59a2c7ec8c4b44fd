package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"thesis-verification-api/models"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a file-backed SQLite database with the service schema.
// A single connection keeps concurrent tests free of SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "thesis.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// seedReviewers inserts n active reviewers with ids 1..n.
func seedReviewers(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&models.User{
			UserID:    i,
			UserFname: "Reviewer",
			UserLname: fmt.Sprint(i),
			Email:     fmt.Sprintf("reviewer%d@example.org", i),
			Role:      models.RoleReviewer,
			IsActive:  true,
		}).Error)
	}
}

type countingLedger struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (l *countingLedger) Name() string { return "counting" }

func (l *countingLedger) Commit(_ context.Context, rec LedgerRecord) (string, error) {
	n := l.calls.Add(1)
	if l.fail.Load() {
		return "", fmt.Errorf("%w: connection refused", ErrLedgerUnavailable)
	}
	return fmt.Sprintf("tx-%s-%d", rec.SubmissionID, n), nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	created  [][]string
	approved []string
	rejected []string
}

func (n *recordingNotifier) SubmissionCreated(_ context.Context, _ *models.PendingSubmission, recipients []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, recipients)
}

func (n *recordingNotifier) SubmissionApproved(_ context.Context, _ *models.PendingSubmission, recipient string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, recipient)
}

func (n *recordingNotifier) SubmissionRejected(_ context.Context, _ *models.PendingSubmission, recipient string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, recipient)
}

type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Save(purpose, originalName string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := fmt.Sprintf("%s/%d-%s", purpose, len(s.files), originalName)
	s.files[path] = data
	return path, nil
}

func (s *memFileStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

// stubEmbedder maps inputs to vectors through fn.
type stubEmbedder struct {
	fn    func(text string) []float64
	err   error
	calls atomic.Int32
}

func (e *stubEmbedder) Model() string { return "stub-embed" }

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.fn(text), nil
}

type stubExtractor struct {
	text string
	err  error
}

func (x stubExtractor) Extract(string, []byte) (string, error) {
	return x.text, x.err
}

// memCorpus is an in-memory CorpusStore.
type memCorpus struct {
	mu     sync.Mutex
	papers []models.ResearchPaper
}

func (c *memCorpus) Snapshot(context.Context) ([]models.ResearchPaper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ResearchPaper, len(c.papers))
	copy(out, c.papers)
	return out, nil
}

func (c *memCorpus) find(match func(p models.ResearchPaper) bool) *models.ResearchPaper {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.papers {
		if match(p) {
			found := p
			return &found
		}
	}
	return nil
}

func (c *memCorpus) FindByFileHash(_ context.Context, hash string) (*models.ResearchPaper, error) {
	return c.find(func(p models.ResearchPaper) bool { return p.FileHash == hash }), nil
}

func (c *memCorpus) FindByLedgerTx(_ context.Context, txID string) (*models.ResearchPaper, error) {
	return c.find(func(p models.ResearchPaper) bool { return p.LedgerTxID == txID }), nil
}

func (c *memCorpus) Search(_ context.Context, title, author string) ([]models.ResearchPaper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ResearchPaper
	for _, p := range c.papers {
		if (title != "" && strings.Contains(strings.ToLower(p.Title), strings.ToLower(title))) ||
			(author != "" && strings.Contains(strings.ToLower(p.Author), strings.ToLower(author))) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memCorpus) Append(_ context.Context, _ *gorm.DB, paper *models.ResearchPaper) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.papers = append(c.papers, *paper)
	return nil
}

func (c *memCorpus) ListLedgerPending(context.Context) ([]models.ResearchPaper, error) {
	return nil, errors.New("not supported")
}

func (c *memCorpus) MarkLedgerCommitted(context.Context, string, string) error {
	return errors.New("not supported")
}

func (c *memCorpus) Invalidate() {}

type memReportCache struct {
	mu      sync.Mutex
	entries map[string]*VerificationReport
	hits    int
}

func newMemReportCache() *memReportCache {
	return &memReportCache{entries: make(map[string]*VerificationReport)}
}

func (c *memReportCache) Get(_ context.Context, key string) (*VerificationReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *memReportCache) Set(_ context.Context, key string, report *VerificationReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = report
}

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
