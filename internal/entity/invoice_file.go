package entity

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceFile represents an uploaded invoice document.
type InvoiceFile struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"`
	SourcePath  string    `json:"source_path"`
	ContentHash []byte    `json:"content_hash" gorm:"uniqueIndex;size:32"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int       `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
