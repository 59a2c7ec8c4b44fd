package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"thesis-verification-api/models"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func storedPaper(id, title, author, hash string, created time.Time) *models.ResearchPaper {
	return &models.ResearchPaper{
		PaperID:    id,
		Title:      title,
		Author:     author,
		FileHash:   hash,
		Status:     models.PaperStatusVerified,
		LedgerTxID: "tx-" + id,
		CreateAt:   created,
	}
}

func TestCorpusStoreAppendAndLookup(t *testing.T) {
	store := NewGormCorpusStore(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, nil, storedPaper("p1", "Crop Yield Forecasting", "Anan Kaew", "h1", base)))
	require.NoError(t, store.Append(ctx, nil, storedPaper("p2", "Yield Gap Analysis", "Suda Wong", "h2", base.Add(time.Hour))))

	got, err := store.FindByFileHash(ctx, " h2 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p2", got.PaperID)

	got, err = store.FindByLedgerTx(ctx, "tx-p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.PaperID)

	got, err = store.FindByFileHash(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := store.Search(ctx, "YIELD", "anan")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "p2", found[0].PaperID, "title matches newest first")
	assert.Equal(t, "p1", found[1].PaperID)
}

func TestCorpusSnapshotIsCachedUntilInvalidated(t *testing.T) {
	db := newTestDB(t)
	store := NewGormCorpusStore(db)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, nil, storedPaper("p1", "First", "A", "h1", time.Now())))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)

	// a write that bypasses the store is invisible until invalidation
	require.NoError(t, db.Create(storedPaper("p2", "Second", "B", "h2", time.Now())).Error)
	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	store.Invalidate()
	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)

	// appends inside a caller-owned transaction leave invalidation to the caller
	tx := db.Begin()
	require.NoError(t, store.Append(ctx, tx, storedPaper("p3", "Third", "C", "h3", time.Now())))
	require.NoError(t, tx.Commit().Error)
	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestCorpusSnapshotLoadRacingAppendIsNotCached(t *testing.T) {
	db := newTestDB(t)
	store := NewGormCorpusStore(db)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, nil, storedPaper("p1", "First", "A", "h1", time.Now())))

	var hold atomic.Bool
	hold.Store(true)
	loaded := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("corpus_test:hold", func(tx *gorm.DB) {
		if tx.Statement.Table == "research_papers" && hold.CompareAndSwap(true, false) {
			close(loaded)
			<-release
		}
	}))

	stale := make(chan []models.ResearchPaper, 1)
	go func() {
		rows, err := store.Snapshot(ctx)
		assert.NoError(t, err)
		stale <- rows
	}()

	<-loaded
	require.NoError(t, store.Append(ctx, nil, storedPaper("p2", "Second", "B", "h2", time.Now())))
	close(release)
	assert.Len(t, <-stale, 1)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestCorpusSearchTreatsWildcardsLiterally(t *testing.T) {
	store := NewGormCorpusStore(newTestDB(t))
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Append(ctx, nil, storedPaper("p1", "Yield at 100% capacity", "A", "h1", now)))
	require.NoError(t, store.Append(ctx, nil, storedPaper("p2", "Yield at 1000 farms", "B", "h2", now)))
	require.NoError(t, store.Append(ctx, nil, storedPaper("p3", "snake_case parsers", "C", "h3", now)))
	require.NoError(t, store.Append(ctx, nil, storedPaper("p4", "snakeXcase parsers", "D", "h4", now)))

	found, err := store.Search(ctx, "100%", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].PaperID)

	found, err = store.Search(ctx, "snake_case", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p3", found[0].PaperID)

	found, err = store.Search(ctx, "%", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].PaperID)
}

func TestCorpusLedgerPendingLifecycle(t *testing.T) {
	store := NewGormCorpusStore(newTestDB(t))
	ctx := context.Background()

	p := storedPaper("p1", "Pending Work", "A", "h1", time.Now())
	p.Status = models.PaperStatusBlockchainPending
	p.LedgerTxID = models.LedgerTxPending
	require.NoError(t, store.Append(ctx, nil, p))
	require.NoError(t, store.Append(ctx, nil, storedPaper("p2", "Committed Work", "B", "h2", time.Now())))

	pending, err := store.ListLedgerPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].PaperID)

	require.NoError(t, store.MarkLedgerCommitted(ctx, "p1", "tx-late"))
	pending, err = store.ListLedgerPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = store.MarkLedgerCommitted(ctx, "nope", "tx")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
