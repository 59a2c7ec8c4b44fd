package models

import "time"

// SubmissionStatusHistory tracks status changes of pending submissions.
type SubmissionStatusHistory struct {
	HistoryID    int       `gorm:"primaryKey;autoIncrement;column:history_id" json:"history_id"`
	SubmissionID string    `gorm:"column:submission_id;size:36;index" json:"submission_id"`
	OldStatus    *string   `gorm:"column:old_status;size:32" json:"old_status"`
	NewStatus    string    `gorm:"column:new_status;size:32" json:"new_status"`
	ChangedBy    int       `gorm:"column:changed_by" json:"changed_by"`
	Reason       *string   `gorm:"column:reason;type:text" json:"reason"`
	Notes        *string   `gorm:"column:notes" json:"notes"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for SubmissionStatusHistory.
func (SubmissionStatusHistory) TableName() string {
	return "submission_status_history"
}
