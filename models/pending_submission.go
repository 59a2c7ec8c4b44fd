package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Pending submission statuses. APPROVED and REJECTED are terminal.
const (
	SubmissionStatusPending  = "PENDING_APPROVAL"
	SubmissionStatusApproved = "APPROVED"
	SubmissionStatusRejected = "REJECTED"
)

// PendingSubmission is a reviewer upload waiting for approval from every
// other active reviewer. Records are never deleted; terminal rows stay as the
// audit trail.
type PendingSubmission struct {
	SubmissionID   string         `gorm:"primaryKey;column:submission_id;size:36" json:"submission_id"`
	Title          string         `gorm:"column:title" json:"title"`
	Author         string         `gorm:"column:author" json:"author"`
	Department     string         `gorm:"column:department" json:"department"`
	Institution    string         `gorm:"column:institution" json:"institution"`
	Supervisor     string         `gorm:"column:supervisor" json:"supervisor,omitempty"`
	SubmissionYear int            `gorm:"column:submission_year" json:"submission_year,omitempty"`
	AbstractText   *string        `gorm:"column:abstract_text;type:text" json:"abstract_text,omitempty"`
	Keywords       datatypes.JSON `gorm:"column:keywords" json:"keywords,omitempty"`

	FileHash    string `gorm:"column:file_hash;size:64;index" json:"file_hash"`
	FileName    string `gorm:"column:file_name" json:"file_name"`
	FileSize    int64  `gorm:"column:file_size" json:"file_size"`
	ContentPath string `gorm:"column:content_path" json:"-"`

	ValidationDocPath string `gorm:"column:validation_doc_path" json:"-"`
	ValidationDocName string `gorm:"column:validation_doc_name" json:"validation_doc_name"`
	ValidationDocHash string `gorm:"column:validation_doc_hash;size:64" json:"validation_doc_hash"`
	ValidationDocSize int64  `gorm:"column:validation_doc_size" json:"validation_doc_size"`

	ExtractedText    string         `gorm:"column:extracted_text;type:longtext" json:"-"`
	TitleEmbedding   datatypes.JSON `gorm:"column:title_embedding" json:"-"`
	ContentEmbedding datatypes.JSON `gorm:"column:content_embedding" json:"-"`
	EmbeddingModel   string         `gorm:"column:embedding_model" json:"embedding_model,omitempty"`

	UploadedBy             int            `gorm:"column:uploaded_by;index" json:"uploaded_by"`
	Approvals              datatypes.JSON `gorm:"column:approvals" json:"-"`
	TotalApprovalsRequired int            `gorm:"column:total_approvals_required" json:"total_approvals_required"`
	Status                 string         `gorm:"column:status;size:32;index" json:"status"`
	RejectionReason        *string        `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	RejectedBy             *int           `gorm:"column:rejected_by" json:"rejected_by,omitempty"`
	RejectedAt             *time.Time     `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	ApprovedAt             *time.Time     `gorm:"column:approved_at" json:"approved_at,omitempty"`
	LedgerTxID             *string        `gorm:"column:ledger_tx_id" json:"ledger_tx_id,omitempty"`

	CreateAt time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time `gorm:"column:update_at" json:"update_at"`
}

func (PendingSubmission) TableName() string {
	return "pending_submissions"
}

// ApprovalIDs returns the reviewer ids that have approved, in stored order.
func (p *PendingSubmission) ApprovalIDs() []int {
	if len(p.Approvals) == 0 {
		return []int{}
	}
	var ids []int
	if err := json.Unmarshal(p.Approvals, &ids); err != nil {
		return []int{}
	}
	return ids
}

// HasApproved reports whether reviewerID is already in the approval set.
func (p *PendingSubmission) HasApproved(reviewerID int) bool {
	for _, id := range p.ApprovalIDs() {
		if id == reviewerID {
			return true
		}
	}
	return false
}

// AddApproval inserts reviewerID into the approval set. It returns false when
// the reviewer is already present.
func (p *PendingSubmission) AddApproval(reviewerID int) bool {
	ids := p.ApprovalIDs()
	for _, id := range ids {
		if id == reviewerID {
			return false
		}
	}
	ids = append(ids, reviewerID)
	b, _ := json.Marshal(ids)
	p.Approvals = datatypes.JSON(b)
	return true
}

// CurrentApprovals is the size of the approval set.
func (p *PendingSubmission) CurrentApprovals() int {
	return len(p.ApprovalIDs())
}

// IsTerminal reports whether the record can no longer change.
func (p *PendingSubmission) IsTerminal() bool {
	return p.Status == SubmissionStatusApproved || p.Status == SubmissionStatusRejected
}

// QuorumReached reports whether the approval set has reached the required size.
func (p *PendingSubmission) QuorumReached() bool {
	return p.TotalApprovalsRequired > 0 && p.CurrentApprovals() == p.TotalApprovalsRequired
}

// MarshalJSON adds the decoded approval list and counters to the API shape.
func (p PendingSubmission) MarshalJSON() ([]byte, error) {
	type alias PendingSubmission
	return json.Marshal(struct {
		alias
		ApprovalsList    []int `json:"approvals"`
		CurrentApprovals int   `json:"current_approvals"`
	}{
		alias:            alias(p),
		ApprovalsList:    p.ApprovalIDs(),
		CurrentApprovals: p.CurrentApprovals(),
	})
}
