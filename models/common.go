package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Accepted upload formats.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// FileUpload records a file written to the upload directory.
type FileUpload struct {
	FileID       string    `gorm:"primaryKey;column:file_id;size:36" json:"file_id"`
	SubmissionID string    `gorm:"column:submission_id;size:36;index" json:"submission_id"`
	Purpose      string    `gorm:"column:purpose;size:16" json:"purpose"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredPath   string    `gorm:"column:stored_path" json:"-"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	FileHash     string    `gorm:"column:file_hash;size:64" json:"file_hash"`
	UploadedBy   int       `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// Upload purposes.
const (
	UploadPurposeThesis     = "thesis"
	UploadPurposeValidation = "validation"
)

func (FileUpload) TableName() string {
	return "file_uploads"
}

// IsValidDocumentType reports whether the sniffed MIME type is one the
// verifier can extract text from.
func (f *FileUpload) IsValidDocumentType() bool {
	return f.MimeType == MimePDF || f.MimeType == MimeDOCX
}

func (f *FileUpload) GetFileSizeInMB() float64 {
	return float64(f.FileSize) / (1024 * 1024)
}

// Extension returns the lower-cased extension of the original file name.
func (f *FileUpload) Extension() string {
	return strings.ToLower(filepath.Ext(f.OriginalName))
}
