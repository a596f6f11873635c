package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxlens/invoice-analyzer/internal/entity"
)

type InvoiceFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error)
	Create(ctx context.Context, file *entity.InvoiceFile) error
	// UpsertByHash returns the stored row and whether it already
	// existed. Re-uploading the same bytes never duplicates a file.
	UpsertByHash(ctx context.Context, file *entity.InvoiceFile) (*entity.InvoiceFile, bool, error)
}

type invoiceFileRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewInvoiceFileRepository(db *gorm.DB, log *slog.Logger) InvoiceFileRepository {
	return &invoiceFileRepo{db: db, log: log}
}

func (r *invoiceFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error) {
	var file entity.InvoiceFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *invoiceFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error) {
	var file entity.InvoiceFile
	if err := r.db.WithContext(ctx).Where("content_hash = ?", hash).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *invoiceFileRepo) Create(ctx context.Context, file *entity.InvoiceFile) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		r.log.Error("failed to create invoice file", "filename", file.Filename, "error", err)
		return err
	}
	return nil
}

func (r *invoiceFileRepo) UpsertByHash(ctx context.Context, file *entity.InvoiceFile) (*entity.InvoiceFile, bool, error) {
	existing, err := r.GetByHash(ctx, file.ContentHash)
	if err == nil {
		r.log.Debug("invoice file already known", "file_id", existing.ID, "filename", existing.Filename)
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("failed to look up invoice file by hash", "filename", file.Filename, "error", err)
		return nil, false, err
	}
	if err := r.Create(ctx, file); err != nil {
		return nil, false, err
	}
	return file, false, nil
}
