package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/entity"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, fileID, batchID uuid.UUID, format, status string) (*entity.ExtractJob, error)
	SetStatus(ctx context.Context, jobID uuid.UUID, status string) error
	FinishOCR(ctx context.Context, jobID uuid.UUID, ocrText string) error
	FinishSuccess(ctx context.Context, jobID uuid.UUID, extracted json.RawMessage, modelName string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewExtractJobRepository(db *gorm.DB, log *slog.Logger) ExtractJobRepository {
	return &extractJobRepo{db: db, log: log}
}

func (r *extractJobRepo) Start(ctx context.Context, fileID, batchID uuid.UUID, format, status string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		BatchID:   batchID,
		Format:    format,
		Status:    status,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		r.log.Error("extract_job start failed", "file_id", fileID, "err", err)
		return nil, err
	}
	r.log.Info("extract_job started", "job_id", job.ID, "file_id", fileID, "format", format)
	return job, nil
}

func (r *extractJobRepo) SetStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	if err := r.update(ctx, jobID, map[string]any{"status": status}); err != nil {
		r.log.Error("extract_job status update failed", "job_id", jobID, "status", status, "err", err)
		return err
	}
	return nil
}

func (r *extractJobRepo) FinishOCR(ctx context.Context, jobID uuid.UUID, ocrText string) error {
	err := r.update(ctx, jobID, map[string]any{
		"ocr_text": ocrText,
		"status":   string(constants.JobStatusOCROK),
	})
	if err != nil {
		r.log.Error("extract_job finish(OCR_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job OCR complete", "job_id", jobID, "chars", len(ocrText))
	return nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, extracted json.RawMessage, modelName string) error {
	err := r.update(ctx, jobID, map[string]any{
		"extracted_json": extracted,
		"model_name":     modelName,
		"finished_at":    time.Now(),
		"status":         string(constants.JobStatusLLMOK),
	})
	if err != nil {
		r.log.Error("extract_job finish(LLM_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (LLM_OK)", "job_id", jobID, "model", modelName)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.update(ctx, jobID, map[string]any{
		"finished_at":   time.Now(),
		"status":        string(constants.JobStatusFailed),
		"error_message": message,
	})
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.ExtractJob, error) {
	var jobs []entity.ExtractJob
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("started_at").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&entity.ExtractJob{}).
		Where("id = ?", jobID).
		Updates(fields).Error
}
