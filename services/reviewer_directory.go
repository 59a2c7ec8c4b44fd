package services

import (
	"context"
	"errors"
	"thesis-verification-api/config"
	"thesis-verification-api/models"

	"gorm.io/gorm"
)

// ReviewerDirectory answers the questions the approval quorum asks about
// reviewer accounts.
type ReviewerDirectory interface {
	CountActiveReviewers(ctx context.Context) (int, error)
	ReviewerEmails(ctx context.Context, excludeID int) ([]string, error)
	Email(ctx context.Context, userID int) (string, error)
}

// GormReviewerDirectory reads the users table.
type GormReviewerDirectory struct {
	db *gorm.DB
}

func NewGormReviewerDirectory(db *gorm.DB) *GormReviewerDirectory {
	if db == nil {
		db = config.DB
	}
	return &GormReviewerDirectory{db: db}
}

func (d *GormReviewerDirectory) activeReviewers(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ? AND delete_at IS NULL", models.RoleReviewer, true)
}

func (d *GormReviewerDirectory) CountActiveReviewers(ctx context.Context) (int, error) {
	var n int64
	if err := d.activeReviewers(ctx).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d *GormReviewerDirectory) ReviewerEmails(ctx context.Context, excludeID int) ([]string, error) {
	var emails []string
	err := d.activeReviewers(ctx).
		Where("user_id <> ? AND email <> ''", excludeID).
		Pluck("email", &emails).Error
	return emails, err
}

func (d *GormReviewerDirectory) Email(ctx context.Context, userID int) (string, error) {
	var u models.User
	err := d.db.WithContext(ctx).Select("email").Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return u.Email, err
}
