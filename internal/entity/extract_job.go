package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one extraction run over an uploaded file.
type ExtractJob struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	FileID        uuid.UUID       `json:"file_id" gorm:"type:uuid;index"`
	BatchID       uuid.UUID       `json:"batch_id" gorm:"type:uuid;index"`
	Format        string          `json:"format"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	Status        string          `json:"status"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	OCRText       *string         `json:"ocr_text,omitempty"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
	ModelName     *string         `json:"model_name,omitempty"`
}
