package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Corpus record statuses.
const (
	PaperStatusVerified          = "VERIFIED"
	PaperStatusBlockchainPending = "BLOCKCHAIN_PENDING"
)

// LedgerTxPending marks a record whose ledger commit failed and must be retried.
const LedgerTxPending = "PENDING"

// ResearchPaper is a previously accepted corpus record. Rows are append-only:
// once written only the ledger columns are updated by the retry job.
type ResearchPaper struct {
	PaperID           string         `gorm:"primaryKey;column:paper_id;size:36" json:"paper_id"`
	SubmissionID      *string        `gorm:"column:submission_id;size:36" json:"submission_id,omitempty"`
	Title             string         `gorm:"column:title" json:"title"`
	Author            string         `gorm:"column:author" json:"author"`
	Department        string         `gorm:"column:department" json:"department"`
	Institution       string         `gorm:"column:institution" json:"institution"`
	Supervisor        string         `gorm:"column:supervisor" json:"supervisor,omitempty"`
	SubmissionDate    time.Time      `gorm:"column:submission_date" json:"submission_date"`
	FileHash          string         `gorm:"column:file_hash;size:64;index" json:"file_hash"`
	FileName          string         `gorm:"column:file_name" json:"file_name"`
	FileSize          int64          `gorm:"column:file_size" json:"file_size"`
	FilePath          string         `gorm:"column:file_path" json:"-"`
	AbstractText      *string        `gorm:"column:abstract_text;type:text" json:"abstract_text,omitempty"`
	Keywords          datatypes.JSON `gorm:"column:keywords" json:"keywords,omitempty"`
	IndexedText       string         `gorm:"column:indexed_text;type:longtext" json:"-"`
	IndexedTextLength int            `gorm:"column:indexed_text_length" json:"indexed_text_length"`
	TitleEmbedding    datatypes.JSON `gorm:"column:title_embedding" json:"-"`
	ContentEmbedding  datatypes.JSON `gorm:"column:content_embedding" json:"-"`
	EmbeddingModel    string         `gorm:"column:embedding_model" json:"embedding_model,omitempty"`
	Status            string         `gorm:"column:status;size:32" json:"status"`
	LedgerTxID        string         `gorm:"column:ledger_tx_id;index" json:"ledger_tx_id"`
	LedgerHash        string         `gorm:"column:ledger_hash" json:"ledger_hash,omitempty"`
	UploadedBy        int            `gorm:"column:uploaded_by" json:"uploaded_by"`
	VerifiedBy        datatypes.JSON `gorm:"column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt        *time.Time     `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreateAt          time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt          time.Time      `gorm:"column:update_at" json:"update_at"`
}

func (ResearchPaper) TableName() string {
	return "research_papers"
}

// TitleVector decodes the stored title embedding. Malformed or empty columns
// decode to nil, which similarity treats as "not comparable".
func (p *ResearchPaper) TitleVector() []float64 {
	return decodeVector(p.TitleEmbedding)
}

// ContentVector decodes the stored content embedding.
func (p *ResearchPaper) ContentVector() []float64 {
	return decodeVector(p.ContentEmbedding)
}

// HasEmbeddings reports whether both embedding columns hold a vector.
func (p *ResearchPaper) HasEmbeddings() bool {
	return len(p.TitleVector()) > 0 && len(p.ContentVector()) > 0
}

// EncodeVector serialises an embedding for a JSON column.
func EncodeVector(v []float64) datatypes.JSON {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func decodeVector(raw datatypes.JSON) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// EncodeStrings serialises a string list for a JSON column.
func EncodeStrings(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}
