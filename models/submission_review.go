package models

import "time"

// Review decisions recorded in submission_reviews.
const (
	ReviewDecisionApproved = "approved"
	ReviewDecisionRejected = "rejected"
)

// SubmissionReview is an audit record for every approve/reject call that
// changed a pending submission.
type SubmissionReview struct {
	ReviewID     int       `gorm:"primaryKey;autoIncrement;column:review_id" json:"review_id"`
	SubmissionID string    `gorm:"column:submission_id;size:36;index" json:"submission_id"`
	ReviewerID   int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewRound  int       `gorm:"column:review_round" json:"review_round"`
	Decision     string    `gorm:"column:decision;size:16" json:"decision"`
	Comments     *string   `gorm:"column:comments;type:text" json:"comments,omitempty"`
	ReviewedAt   time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
}

// TableName specifies the table name for SubmissionReview.
func (SubmissionReview) TableName() string {
	return "submission_reviews"
}
