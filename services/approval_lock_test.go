package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestApproveReadsSubmissionWithRowLock(t *testing.T) {
	db, mock := newMySQLMock(t)
	svc := NewApprovalService(ApprovalDeps{
		DB:            db,
		Corpus:        &memCorpus{},
		Files:         newMemFileStore(),
		Ledger:        &countingLedger{},
		Notifier:      &recordingNotifier{},
		LedgerTimeout: time.Second,
	})

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `pending_submissions` WHERE submission_id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"submission_id"}))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), "sub-1", 2)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "sub-1", nf.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectReadsSubmissionWithRowLock(t *testing.T) {
	db, mock := newMySQLMock(t)
	svc := NewApprovalService(ApprovalDeps{
		DB:       db,
		Corpus:   &memCorpus{},
		Files:    newMemFileStore(),
		Ledger:   &countingLedger{},
		Notifier: &recordingNotifier{},
	})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM `pending_submissions` WHERE submission_id = \\? .*FOR UPDATE").
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	_, err := svc.Reject(context.Background(), "sub-9", 2, "plagiarised")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
